package rag

import (
	"context"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/rag/catalog"
	"github.com/akolanti/docvector/internal/rag/chunker"
	"github.com/akolanti/docvector/internal/rag/embedding"
	"github.com/akolanti/docvector/internal/rag/extract"
	"github.com/akolanti/docvector/internal/rag/ingest"
	"github.com/akolanti/docvector/internal/rag/retrieval"
	"github.com/akolanti/docvector/internal/rag/vectorDB"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/google/uuid"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - This is the PUBLIC contract used by the HTTP handlers, the MCP tools and the CLI.
  - Callers never see the embedder, the index or the pipeline pieces.

2. service (Private Struct):
  - Holds the state: the ingestion pipeline, the retrieval service, the catalog
    and the extractor, all sharing one embedder and one vector index.

3. Dependency Injection (NewService):
  - The constructor wires the collaborators so tests can swap in the
    in-memory index and a fake embedder without touching callers.
*/

type Service interface {
	IngestText(ctx context.Context, text, documentID, userID string) (commonModels.IngestionReport, error)
	IngestFile(ctx context.Context, filename string, content []byte, userID string) (commonModels.UploadReport, error)
	Search(ctx context.Context, q commonModels.Query) ([]commonModels.SearchResult, error)
	ListDocuments(ctx context.Context, userID string) ([]commonModels.DocumentSummary, error)
	DeleteDocument(ctx context.Context, documentID, userID string) error
	EmbedText(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
	Dimension() int
	Health(ctx context.Context) commonModels.HealthStatus
}

type service struct {
	embedder  embedding.Embedder
	index     vectorDB.VectorIndex
	pipeline  *ingest.Pipeline
	retriever *retrieval.Service
	catalog   *catalog.Catalog
	extractor *extract.Extractor
	logger    *logger_i.Logger
}

// Options carries the tunables of the pipeline; the zero value uses the defaults.
type Options struct {
	Chunker   config.ChunkerConfig
	Retrieval config.RetrievalConfig
	Catalog   config.CatalogConfig
	MaxUpload int64
}

func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Chunker:   cfg.Chunker,
		Retrieval: cfg.Retrieval,
		Catalog:   cfg.Catalog,
		MaxUpload: cfg.Upload.MaxBytes,
	}
}

func NewService(index vectorDB.VectorIndex, em embedding.Embedder, opts Options) Service {
	chunking := chunker.Config{
		ChunkSizeChars: opts.Chunker.ChunkSizeChars,
		OverlapChars:   opts.Chunker.OverlapChars,
	}
	if chunking.ChunkSizeChars <= 0 {
		chunking.ChunkSizeChars = config.DefaultChunkSizeChars
		chunking.OverlapChars = config.DefaultOverlapChars
	}
	return &service{
		embedder:  em,
		index:     index,
		pipeline:  ingest.NewPipeline(em, index, chunking),
		retriever: retrieval.NewService(em, index, retrieval.DefaultsFrom(opts.Retrieval)),
		catalog:   catalog.New(index, opts.Catalog),
		extractor: extract.New(opts.MaxUpload),
		logger:    logger_i.NewLogger("RAG Service"),
	}
}

// IngestText indexes raw text. An empty documentID gets a fresh UUID.
func (s *service) IngestText(ctx context.Context, text, documentID, userID string) (commonModels.IngestionReport, error) {
	if documentID == "" {
		documentID = uuid.New().String()
	}
	defer captureStep("document_ingestion", time.Now())
	return s.pipeline.Ingest(ctx, text, documentID, userID)
}

func (s *service) IngestFile(ctx context.Context, filename string, content []byte, userID string) (commonModels.UploadReport, error) {
	if userID == "" {
		return commonModels.UploadReport{}, ragErrors.InvalidInput("upload", "user_id is required")
	}
	loggr := s.logger.FromContext(ctx)

	start := time.Now()
	text, err := s.extractor.Extract(ctx, filename, content)
	captureStep("text_extraction", start)
	if err != nil {
		return commonModels.UploadReport{}, err
	}

	documentID := uuid.New().String()
	report, err := s.IngestText(ctx, text, documentID, userID)
	if err != nil {
		loggr.Error("Ingestion failed", "filename", filename, "error", err)
		return commonModels.UploadReport{}, err
	}
	loggr.Info("File processed", "filename", filename, "documentId", documentID, "chunks", report.ChunksProcessed)
	return commonModels.UploadReport{
		IngestionReport: report,
		Filename:        filename,
		Preview:         extract.Summary(text),
	}, nil
}

func (s *service) Search(ctx context.Context, q commonModels.Query) ([]commonModels.SearchResult, error) {
	defer captureStep("search", time.Now())
	return s.retriever.Search(ctx, q)
}

func (s *service) ListDocuments(ctx context.Context, userID string) ([]commonModels.DocumentSummary, error) {
	return s.catalog.List(ctx, userID)
}

func (s *service) DeleteDocument(ctx context.Context, documentID, userID string) error {
	return s.catalog.Delete(ctx, documentID, userID)
}

func (s *service) EmbedText(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	return embedding.EmbedChecked(ctx, "embed_text", s.embedder, texts)
}

func (s *service) ModelName() string { return s.embedder.ModelName() }
func (s *service) Dimension() int    { return s.embedder.Dimension() }

func (s *service) Health(ctx context.Context) commonModels.HealthStatus {
	return s.index.Health(ctx)
}
