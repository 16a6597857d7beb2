package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/docvector/internal/api"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
)

const (
	StatusProcessed = "processed"
	uploadMessage   = "Document successfully processed and indexed"
)

func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ToDocumentResponse(report commonModels.UploadReport) api.DocumentResponse {
	return api.DocumentResponse{
		DocumentID:    report.DocumentID,
		Filename:      report.Filename,
		ChunksCreated: report.ChunksProcessed,
		Status:        StatusProcessed,
		Message:       uploadMessage,
		Preview:       report.Preview,
	}
}

func ToQuery(req api.SearchRequest) commonModels.Query {
	return commonModels.Query{
		Text:           req.Query,
		UserID:         req.UserID,
		Limit:          req.Limit,
		ScoreThreshold: req.ScoreThreshold,
	}
}

func ToSearchResponse(query string, results []commonModels.SearchResult) api.SearchResponse {
	if results == nil {
		results = []commonModels.SearchResult{}
	}
	return api.SearchResponse{
		Query:        query,
		Results:      results,
		TotalResults: len(results),
	}
}

func ToEmbeddingResponse(vectors [][]float32, model string) api.EmbeddingResponse {
	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}
	return api.EmbeddingResponse{
		Embeddings: vectors,
		ModelName:  model,
		Dimension:  dimension,
	}
}

func ToDeleteResponse(documentID string) api.DeleteResponse {
	return api.DeleteResponse{Message: fmt.Sprintf("Document %s deleted successfully", documentID)}
}

func ToDocumentListResponse(userID string, documents []commonModels.DocumentSummary) api.DocumentListResponse {
	if documents == nil {
		documents = []commonModels.DocumentSummary{}
	}
	return api.DocumentListResponse{UserID: userID, Documents: documents}
}

func ToHealthResponse(status commonModels.HealthStatus, now time.Time) api.HealthResponse {
	overall := string(commonModels.HealthHealthy)
	if status != commonModels.HealthHealthy {
		overall = string(commonModels.HealthUnhealthy)
	}
	return api.HealthResponse{
		Status: overall,
		Services: map[string]string{
			"qdrant":             string(status),
			"document_processor": "ok",
		},
		Timestamp: Timestamp(now),
	}
}

func BadRequest(detail string, traceID string) api.ErrorResponse {
	return api.ErrorResponse{Detail: detail, TraceID: traceID}
}

// ToErrorResponse exposes the error kind next to the message.
func ToErrorResponse(err error, traceID string) api.ErrorResponse {
	return api.ErrorResponse{
		Detail:  err.Error(),
		Kind:    string(ragErrors.KindOf(err)),
		TraceID: traceID,
	}
}
