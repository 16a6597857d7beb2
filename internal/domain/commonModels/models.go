package commonModels

// payload keys written on every indexed point
const (
	PayloadDocumentID = "document_id"
	PayloadUserID     = "user_id"
	PayloadChunkID    = "chunk_id"
	PayloadChunkIndex = "chunk_index"
	PayloadContent    = "content"
	PayloadCreatedAt  = "created_at"
	PayloadCharCount  = "char_count"
	PayloadWordCount  = "word_count"
)

type Chunk struct {
	ChunkID    string         `json:"chunk_id"`
	Content    string         `json:"content"`
	ChunkIndex int            `json:"chunk_index"`
	Metadata   map[string]any `json:"metadata"`
}

// Payload is the flat key/value map stored alongside a vector.
// Values are string, int64, float64 or bool.
type Payload map[string]any

func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func (p Payload) Int(key string) int64 {
	switch v := p[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

type IndexedPoint struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Hit is a scored point returned by a similarity search.
type Hit struct {
	ID      string
	Score   float32
	Payload Payload
}

type SearchResult struct {
	DocumentID string         `json:"document_id"`
	ChunkID    string         `json:"chunk_id"`
	Content    string         `json:"content"`
	Score      float32        `json:"score"`
	Metadata   map[string]any `json:"metadata"`
}

type DocumentSummary struct {
	DocumentID string         `json:"document_id"`
	ChunkCount int            `json:"chunk_count"`
	CreatedAt  string         `json:"created_at"`
	Metadata   map[string]any `json:"metadata"`
}

type IngestionReport struct {
	DocumentID      string `json:"document_id"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// Query is a retrieval request. Nil Limit and ScoreThreshold take the configured defaults.
type Query struct {
	Text           string
	UserID         string
	Limit          *int
	ScoreThreshold *float32
}

type HealthStatus string

const (
	HealthNotInitialized HealthStatus = "not_initialized"
	HealthHealthy        HealthStatus = "healthy"
	HealthUnhealthy      HealthStatus = "unhealthy"
)

type Metric string

const MetricCosine Metric = "cosine"

// Condition is an exact keyword match on a payload field.
type Condition struct {
	Key   string
	Value string
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter struct {
	Must []Condition
}

func MatchUser(userID string) Filter {
	return Filter{Must: []Condition{{Key: PayloadUserID, Value: userID}}}
}

func MatchDocument(documentID, userID string) Filter {
	return Filter{Must: []Condition{
		{Key: PayloadDocumentID, Value: documentID},
		{Key: PayloadUserID, Value: userID},
	}}
}

func (f Filter) Matches(p Payload) bool {
	for _, c := range f.Must {
		if p.String(c.Key) != c.Value {
			return false
		}
	}
	return true
}

// UploadReport describes an ingested file.
type UploadReport struct {
	IngestionReport
	Filename string `json:"filename"`
	Preview  string `json:"preview"`
}
