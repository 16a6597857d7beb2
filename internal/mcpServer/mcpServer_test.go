package mcpServer

import (
	"context"
	"testing"

	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unitEmbedder struct{}

func (unitEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0, 1}
	}
	return out, nil
}
func (unitEmbedder) Dimension() int    { return 2 }
func (unitEmbedder) ModelName() string { return "unit" }

func newServer(t *testing.T) *Server {
	store := memoryDB.New("documents")
	require.NoError(t, store.EnsureCollection(context.Background(), 2, commonModels.MetricCosine))
	s, err := New(rag.NewService(store, unitEmbedder{}, rag.Options{}))
	require.NoError(t, err)
	return s
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrMissingService)
}

func TestTools_IngestSearchListDelete(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, report, err := s.handleIngest(ctx, nil, IngestInput{Text: "notes about the release", UserID: "alice", DocumentID: "doc1"})
	require.NoError(t, err)
	assert.Equal(t, commonModels.IngestionReport{DocumentID: "doc1", ChunksProcessed: 1}, report)

	_, found, err := s.handleSearch(ctx, nil, SearchInput{Query: "release", UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "doc1_chunk_0", found.Results[0].ChunkID)

	_, listed, err := s.handleList(ctx, nil, ListInput{UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, "doc1", listed.Documents[0].DocumentID)

	result, deleted, err := s.handleDelete(ctx, nil, DeleteInput{DocumentID: "doc1", UserID: "alice"})
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	require.Len(t, result.Content, 1)

	_, found, err = s.handleSearch(ctx, nil, SearchInput{Query: "release", UserID: "alice"})
	require.NoError(t, err)
	assert.Zero(t, found.Count)
	assert.NotNil(t, found.Results)
}

func TestTools_InvalidInputSurfacesKind(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, _, err := s.handleSearch(ctx, nil, SearchInput{Query: "", UserID: "alice"})
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)

	_, _, err = s.handleIngest(ctx, nil, IngestInput{Text: "text"})
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)

	_, _, err = s.handleDelete(ctx, nil, DeleteInput{DocumentID: "doc1"})
	assert.ErrorIs(t, err, ragErrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "delete_document")
}

func TestHandler_NotNil(t *testing.T) {
	assert.NotNil(t, newServer(t).Handler())
}
