package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/metrics"
	"github.com/akolanti/docvector/internal/rag/chunker"
	"github.com/akolanti/docvector/internal/rag/embedding"
	"github.com/akolanti/docvector/internal/rag/vectorDB"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/google/uuid"
)

const op = "ingest"

// Pipeline chunks a document, embeds every chunk in one batch and commits all
// points with a single upsert. Nothing is written unless every step succeeds.
type Pipeline struct {
	embedder embedding.Embedder
	index    vectorDB.VectorIndex
	chunking chunker.Config
	now      func() time.Time
	newID    func() string
	logger   *logger_i.Logger
}

func NewPipeline(e embedding.Embedder, index vectorDB.VectorIndex, chunking chunker.Config) *Pipeline {
	return &Pipeline{
		embedder: e,
		index:    index,
		chunking: chunking,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		logger:   logger_i.NewLogger("Document Ingestion"),
	}
}

func (p *Pipeline) Ingest(ctx context.Context, text, documentID, userID string) (commonModels.IngestionReport, error) {
	if strings.TrimSpace(text) == "" {
		return commonModels.IngestionReport{}, ragErrors.InvalidInput(op, "document text is empty")
	}
	if documentID == "" {
		return commonModels.IngestionReport{}, ragErrors.InvalidInput(op, "document_id is required")
	}
	if userID == "" {
		return commonModels.IngestionReport{}, ragErrors.InvalidInput(op, "user_id is required")
	}

	loggr := p.logger.FromContext(ctx).With("documentId", documentID)

	chunks := chunker.Chunk(text, documentID, p.chunking)
	loggr.Debug("Chunked document", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := embedding.EmbedChecked(ctx, op, p.embedder, texts)
	if err != nil {
		return commonModels.IngestionReport{}, err
	}

	createdAt := p.now().UTC().Format(time.RFC3339)
	points := make([]commonModels.IndexedPoint, len(chunks))
	for i, c := range chunks {
		points[i] = commonModels.IndexedPoint{
			ID:      p.newID(),
			Vector:  vectors[i],
			Payload: buildPayload(c, documentID, userID, createdAt),
		}
	}

	start := time.Now()
	err = p.index.Upsert(ctx, points)
	metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start))
	if err != nil {
		return commonModels.IngestionReport{}, ragErrors.EnsureKind(ragErrors.KindIndexUnavailable, op, err)
	}

	metrics.CaptureIngestion(len(points))
	loggr.Info("Document ingested", "chunks", len(points))
	return commonModels.IngestionReport{DocumentID: documentID, ChunksProcessed: len(points)}, nil
}

func buildPayload(c commonModels.Chunk, documentID, userID, createdAt string) commonModels.Payload {
	payload := make(commonModels.Payload, len(c.Metadata)+6)
	for k, v := range c.Metadata {
		payload[k] = v
	}
	payload[commonModels.PayloadDocumentID] = documentID
	payload[commonModels.PayloadUserID] = userID
	payload[commonModels.PayloadChunkID] = c.ChunkID
	payload[commonModels.PayloadChunkIndex] = c.ChunkIndex
	payload[commonModels.PayloadContent] = c.Content
	payload[commonModels.PayloadCreatedAt] = createdAt
	return payload
}
