package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/akolanti/docvector/internal/adapter"
	"github.com/akolanti/docvector/internal/adapter/utils"
	"github.com/akolanti/docvector/internal/api"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/pkg/logger_i"
)

const (
	bannerMessage = "Document Vector Search API"
	// room for the multipart envelope around the file itself
	multipartOverhead = 1 << 20
	maxJSONBody       = 4 << 20
)

type Handler struct {
	service   rag.Service
	maxUpload int64
	now       func() time.Time
	logger    *logger_i.Logger
}

func NewHandler(service rag.Service, maxUpload int64) *Handler {
	return &Handler{
		service:   service,
		maxUpload: maxUpload,
		now:       time.Now,
		logger:    logger_i.NewLogger("RequestHandler"),
	}
}

// Root godoc
// @Summary      Service banner
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.RootResponse
// @Router       / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.RootResponse{
		Message:   bannerMessage,
		Status:    "running",
		Timestamp: adapter.Timestamp(h.now()),
	})
}

// Health godoc
// @Summary      Detailed health check
// @Description  Reports the vector index state. Answers 503 unless the index is healthy.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.service.Health(r.Context())
	code := http.StatusOK
	if status != commonModels.HealthHealthy {
		h.logger.FromContext(r.Context()).Warn("Index not healthy", "status", status)
		code = http.StatusServiceUnavailable
	}
	writeJsonResponse(w, code, adapter.ToHealthResponse(status, h.now()))
}

// Upload godoc
// @Summary      Upload a document for indexing
// @Description  Extracts text from a PDF, DOCX, TXT or MD file, chunks and embeds it, and indexes the chunks for the user.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        user_id  query     string  true  "Owner of the document"
// @Param        file     formData  file    true  "The document to index"
// @Success      200  {object}  api.DocumentResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing user, unsupported type, empty or oversized file"
// @Failure      503  {object}  api.ErrorResponse  "Embedder or index unavailable"
// @Router       /documents/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, traceID(r.Context()), "user_id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		h.logger.FromContext(r.Context()).Warn("Bad upload", "error", err)
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, traceID(r.Context()), "file exceeds the upload limit")
			return
		}
		WriteErrorResponse(w, http.StatusBadRequest, traceID(r.Context()), "multipart field 'file' is required")
		return
	}
	defer fileReader.Close()

	// one extra byte lets the extractor see an oversized file
	content, err := io.ReadAll(io.LimitReader(fileReader, h.maxUpload+1))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, traceID(r.Context()), "could not read file")
		return
	}

	report, err := h.service.IngestFile(r.Context(), fileMetadata.Filename, content, userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(report))
}

// Search godoc
// @Summary      Search a user's documents
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest  true  "Query, owner and optional limit / score threshold"
// @Success      200  {object}  api.SearchResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var request api.SearchRequest
	if !h.decodeBody(w, r, &request) {
		return
	}

	results, err := h.service.Search(r.Context(), adapter.ToQuery(request))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(request.Query, results))
}

// Embeddings godoc
// @Summary      Embed raw texts
// @Tags         Embeddings
// @Accept       json
// @Produce      json
// @Param        request  body      api.EmbeddingRequest  true  "Texts to embed"
// @Success      200  {object}  api.EmbeddingResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /embeddings [post]
func (h *Handler) Embeddings(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var request api.EmbeddingRequest
	if !h.decodeBody(w, r, &request) {
		return
	}

	vectors, err := h.service.EmbedText(r.Context(), request.Texts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToEmbeddingResponse(vectors, h.service.ModelName()))
}

// DeleteDocument godoc
// @Summary      Delete a document and its chunks
// @Tags         Documents
// @Produce      json
// @Param        document_id  path      string  true  "Document ID"
// @Param        user_id      query     string  true  "Owner of the document"
// @Success      200  {object}  api.DeleteResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /documents/{document_id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	documentID := utils.GetChiURLParam(r, "document_id")
	userID := r.URL.Query().Get("user_id")

	if err := h.service.DeleteDocument(r.Context(), documentID, userID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDeleteResponse(documentID))
}

// ListDocuments godoc
// @Summary      List a user's documents
// @Tags         Documents
// @Produce      json
// @Param        user_id  path      string  true  "Owner"
// @Success      200  {object}  api.DocumentListResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /documents/{user_id} [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID := utils.GetChiURLParam(r, "user_id")

	documents, err := h.service.ListDocuments(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(userID, documents))
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			h.logger.Error("Couldn't close the request body", "error", err)
		}
	}(r.Body)

	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(target); err != nil {
		h.logger.FromContext(r.Context()).Warn("Bad request body", "path", r.URL.Path, "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, traceID(r.Context()), "request body is not valid JSON")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := ragErrors.HTTPStatus(err)
	loggr := h.logger.FromContext(r.Context()).With("path", r.URL.Path, "status", code)
	if code >= http.StatusInternalServerError {
		loggr.Error("Request failed", "error", err)
	} else {
		loggr.Warn("Request rejected", "error", err)
	}
	writeJsonResponse(w, code, adapter.ToErrorResponse(err, traceID(r.Context())))
}
