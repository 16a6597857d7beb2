package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/docvector/internal/adapter"
	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/pkg/logger_i"
)

var logRH = logger_i.NewLogger("ResponseWriter")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.FromContext(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func traceID(ctx context.Context) string {
	id, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return id
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, traceID string, detail string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(detail, traceID))
}
