package api

import "github.com/akolanti/docvector/internal/domain/commonModels"

// responses---------------------

type RootResponse struct {
	Message   string `json:"message" example:"Document Vector Search API"`
	Status    string `json:"status" example:"running"`
	Timestamp string `json:"timestamp" example:"2024-05-01T10:00:00Z"`
}

type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
}

type DocumentResponse struct {
	DocumentID    string `json:"document_id" example:"3f0c2a9e-5b1d-4c1e-9a57-0d3b1f1d2c44"`
	Filename      string `json:"filename" example:"handbook.pdf"`
	ChunksCreated int    `json:"chunks_created" example:"12"`
	Status        string `json:"status" example:"processed"`
	Message       string `json:"message" example:"Document successfully processed and indexed"`
	Preview       string `json:"preview,omitempty"`
}

type SearchResponse struct {
	Query        string                      `json:"query"`
	Results      []commonModels.SearchResult `json:"results"`
	TotalResults int                         `json:"total_results"`
}

type EmbeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	ModelName  string      `json:"model_name" example:"sentence-transformers/all-MiniLM-L6-v2"`
	Dimension  int         `json:"dimension" example:"384"`
}

type DeleteResponse struct {
	Message string `json:"message" example:"Document doc1 deleted successfully"`
}

type DocumentListResponse struct {
	UserID    string                         `json:"user_id" example:"alice"`
	Documents []commonModels.DocumentSummary `json:"documents"`
}

type ErrorResponse struct {
	Detail  string `json:"detail" example:"user_id is required"`
	Kind    string `json:"kind,omitempty" example:"invalid_input"`
	TraceID string `json:"trace_id,omitempty"`
}

// requests---------------------

type SearchRequest struct {
	Query          string   `json:"query" validate:"required" example:"vacation policy"`
	UserID         string   `json:"user_id" validate:"required" example:"alice"`
	Limit          *int     `json:"limit,omitempty" example:"10"`
	ScoreThreshold *float32 `json:"score_threshold,omitempty" example:"0.7"`
}

type EmbeddingRequest struct {
	Texts []string `json:"texts" validate:"required"`
}
