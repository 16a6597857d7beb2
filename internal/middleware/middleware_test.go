package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/docvector/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceEcho(w http.ResponseWriter, r *http.Request) {
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	_, _ = w.Write([]byte(trace))
}

func newRouter(cfg config.ServerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(New(cfg).Wrap)
	r.Get("/documents/{user_id}", traceEcho)
	return r
}

func TestWrap_KeepsIncomingTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/documents/alice", nil)
	req.Header.Set(config.TRACE_ID_HEADER, "trace-123")
	rec := httptest.NewRecorder()

	newRouter(config.ServerConfig{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-123", rec.Body.String())
	assert.Equal(t, "trace-123", rec.Header().Get(config.TRACE_ID_HEADER))
}

func TestWrap_GeneratesTraceID(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(config.ServerConfig{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/alice", nil))

	assert.Len(t, rec.Body.String(), 36)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(config.TRACE_ID_HEADER))
}

func TestWrap_RateLimitsPerIP(t *testing.T) {
	router := newRouter(config.ServerConfig{RateLimitPerSecond: 0.001, RateLimitBurst: 2})

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/documents/alice", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("10.0.0.1:1000"))
	require.Equal(t, http.StatusOK, call("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000"), "other clients keep their own budget")
}

func TestRouteLabel_UsesPattern(t *testing.T) {
	var label string
	r := chi.NewRouter()
	r.Get("/documents/{user_id}", func(w http.ResponseWriter, req *http.Request) {
		label = routeLabel(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents/alice", nil))

	assert.Equal(t, "/documents/{user_id}", label)
}
