package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 1}
	}
	return out, nil
}
func (flatEmbedder) Dimension() int    { return 2 }
func (flatEmbedder) ModelName() string { return "flat" }

func testService(t *testing.T) rag.Service {
	store := memoryDB.New("documents")
	require.NoError(t, store.EnsureCollection(context.Background(), 2, commonModels.MetricCosine))
	return rag.NewService(store, flatEmbedder{}, rag.Options{})
}

func TestRouter_MountsRoutes(t *testing.T) {
	cfg := config.Default()
	router, err := NewRouter(cfg, testService(t))
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/documents/alice", "", http.StatusOK},
		{http.MethodPost, "/embeddings", `{"texts":["x"]}`, http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/swagger", "", http.StatusMovedPermanently},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			assert.Equal(t, tc.code, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(config.TRACE_ID_HEADER))
		})
	}
}

func TestRouter_MCPToggle(t *testing.T) {
	cfg := config.Default()
	cfg.MCP.Enabled = false
	router, err := NewRouter(cfg, testService(t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShutDownHandler_ClosesServices(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ListenAddr = "127.0.0.1:0"
	s, err := CreateServer(cfg, testService(t))
	require.NoError(t, err)

	closed := make(chan struct{})
	params := ShutdownParams{
		GracefulShutdown: make(chan os.Signal, 1),
		StopExecution:    make(chan bool),
		CloseServices: func() error {
			close(closed)
			return nil
		},
	}
	go s.ShutDownHandler(params)
	params.GracefulShutdown <- syscall.SIGTERM

	select {
	case <-params.StopExecution:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	select {
	case <-closed:
	default:
		t.Fatal("services were not closed")
	}
}
