package catalog

import (
	"context"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/metrics"
	"github.com/akolanti/docvector/internal/rag/vectorDB"
	"github.com/akolanti/docvector/pkg/logger_i"
)

// Catalog lists and deletes a user's documents. The index payload is the only
// record of a document; nothing is kept here between calls.
type Catalog struct {
	index     vectorDB.VectorIndex
	scanLimit int
	paginate  bool
	logger    *logger_i.Logger
}

func New(index vectorDB.VectorIndex, cfg config.CatalogConfig) *Catalog {
	scanLimit := cfg.ScanLimit
	if scanLimit <= 0 {
		scanLimit = config.DefaultCatalogScanLimit
	}
	return &Catalog{
		index:     index,
		scanLimit: scanLimit,
		paginate:  cfg.Paginate,
		logger:    logger_i.NewLogger("Catalog"),
	}
}

// List groups the user's points by document in first-seen order. Without
// pagination only the first scan page is considered, so users with more points
// than the scan limit get partial counts.
func (c *Catalog) List(ctx context.Context, userID string) ([]commonModels.DocumentSummary, error) {
	const op = "list_documents"
	if userID == "" {
		return nil, ragErrors.InvalidInput(op, "user_id is required")
	}

	var order []string
	byDocument := make(map[string]*commonModels.DocumentSummary)
	filter := commonModels.MatchUser(userID)
	offset := ""
	pages := 0

	for {
		start := time.Now()
		points, next, err := c.index.Scroll(ctx, filter, c.scanLimit, offset)
		metrics.CaptureExecutionMetrics("vector_scroll", time.Since(start))
		if err != nil {
			return nil, ragErrors.EnsureKind(ragErrors.KindIndexUnavailable, op, err)
		}
		pages++

		for _, p := range points {
			documentID := p.Payload.String(commonModels.PayloadDocumentID)
			summary, seen := byDocument[documentID]
			if !seen {
				summary = &commonModels.DocumentSummary{
					DocumentID: documentID,
					CreatedAt:  p.Payload.String(commonModels.PayloadCreatedAt),
					Metadata:   map[string]any{},
				}
				byDocument[documentID] = summary
				order = append(order, documentID)
			}
			summary.ChunkCount++
		}

		if !c.paginate || next == "" || len(points) == 0 {
			break
		}
		offset = next
	}

	documents := make([]commonModels.DocumentSummary, 0, len(order))
	for _, id := range order {
		documents = append(documents, *byDocument[id])
	}
	c.logger.FromContext(ctx).Debug("Listed documents", "userId", userID, "documents", len(documents), "pages", pages)
	return documents, nil
}

// Delete removes every chunk of documentID owned by userID. Deleting a
// document that does not exist succeeds.
func (c *Catalog) Delete(ctx context.Context, documentID, userID string) error {
	const op = "delete_document"
	if documentID == "" {
		return ragErrors.InvalidInput(op, "document_id is required")
	}
	if userID == "" {
		return ragErrors.InvalidInput(op, "user_id is required")
	}

	start := time.Now()
	err := c.index.Delete(ctx, commonModels.MatchDocument(documentID, userID))
	metrics.CaptureExecutionMetrics("vector_delete", time.Since(start))
	if err != nil {
		return ragErrors.EnsureKind(ragErrors.KindIndexUnavailable, op, err)
	}
	c.logger.FromContext(ctx).Info("Document deleted", "documentId", documentID, "userId", userID)
	return nil
}
