package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/metrics"
	"github.com/akolanti/docvector/internal/rag/embedding"
	"github.com/akolanti/docvector/internal/rag/vectorDB"
	"github.com/akolanti/docvector/pkg/logger_i"
)

const op = "search"

// payload keys that are lifted into SearchResult fields or hidden from callers
var reservedKeys = map[string]bool{
	commonModels.PayloadDocumentID: true,
	commonModels.PayloadChunkID:    true,
	commonModels.PayloadContent:    true,
	commonModels.PayloadUserID:     true,
}

type Defaults struct {
	Limit          int
	ScoreThreshold float32
}

func DefaultsFrom(c config.RetrievalConfig) Defaults {
	return Defaults{Limit: c.DefaultLimit, ScoreThreshold: c.DefaultScoreThreshold}
}

type Service struct {
	embedder embedding.Embedder
	index    vectorDB.VectorIndex
	defaults Defaults
	logger   *logger_i.Logger
}

func NewService(e embedding.Embedder, index vectorDB.VectorIndex, defaults Defaults) *Service {
	if defaults.Limit == 0 {
		defaults.Limit = config.DefaultSearchLimit
	}
	return &Service{
		embedder: e,
		index:    index,
		defaults: defaults,
		logger:   logger_i.NewLogger("Retrieval"),
	}
}

// Search returns the user's chunks most similar to q.Text, best first. Only
// points owned by q.UserID are ever returned.
func (s *Service) Search(ctx context.Context, q commonModels.Query) ([]commonModels.SearchResult, error) {
	limit, threshold, err := s.validate(q)
	if err != nil {
		return nil, err
	}

	vectors, err := embedding.EmbedChecked(ctx, op, s.embedder, []string{q.Text})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hits, err := s.index.Search(ctx, vectors[0], commonModels.MatchUser(q.UserID), limit, threshold)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, ragErrors.EnsureKind(ragErrors.KindIndexUnavailable, op, err)
	}

	loggr := s.logger.FromContext(ctx)
	results := make([]commonModels.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Payload.String(commonModels.PayloadUserID) != q.UserID {
			loggr.Warn("Index returned a point owned by another user", "pointId", hit.ID)
			continue
		}
		results = append(results, toResult(hit))
	}
	loggr.Debug("Search complete", "hits", len(results), "limit", limit, "threshold", threshold)
	return results, nil
}

func (s *Service) validate(q commonModels.Query) (int, float32, error) {
	if strings.TrimSpace(q.Text) == "" {
		return 0, 0, ragErrors.InvalidInput(op, "query is empty")
	}
	if q.UserID == "" {
		return 0, 0, ragErrors.InvalidInput(op, "user_id is required")
	}

	limit := s.defaults.Limit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit < config.MinSearchLimit || limit > config.MaxSearchLimit {
		return 0, 0, ragErrors.InvalidInput(op, "limit must be between %d and %d, got %d",
			config.MinSearchLimit, config.MaxSearchLimit, limit)
	}

	threshold := s.defaults.ScoreThreshold
	if q.ScoreThreshold != nil {
		threshold = *q.ScoreThreshold
	}
	if threshold < 0 || threshold > 1 {
		return 0, 0, ragErrors.InvalidInput(op, "score_threshold must be between 0 and 1, got %g", threshold)
	}
	return limit, threshold, nil
}

func toResult(hit commonModels.Hit) commonModels.SearchResult {
	metadata := make(map[string]any, len(hit.Payload))
	for k, v := range hit.Payload {
		if !reservedKeys[k] {
			metadata[k] = v
		}
	}
	return commonModels.SearchResult{
		DocumentID: hit.Payload.String(commonModels.PayloadDocumentID),
		ChunkID:    hit.Payload.String(commonModels.PayloadChunkID),
		Content:    hit.Payload.String(commonModels.PayloadContent),
		Score:      hit.Score,
		Metadata:   metadata,
	}
}
