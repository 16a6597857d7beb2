package app

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	texts atomic.Int64
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.texts.Add(int64(len(texts)))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}
func (c *countingEmbedder) Dimension() int    { return 2 }
func (c *countingEmbedder) ModelName() string { return "counting" }

func memoryConfig(redisAddr string) *config.Config {
	cfg := config.Default()
	cfg.Index.Backend = config.IndexBackendMemory
	cfg.Redis.Addr = redisAddr
	return cfg
}

func TestAssemble_CachesEmbeddingsInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	inner := &countingEmbedder{}

	a, err := assemble(context.Background(), memoryConfig(mr.Addr()), inner)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Service.EmbedText(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	_, err = a.Service.EmbedText(context.Background(), []string{"alpha", "gamma"})
	require.NoError(t, err)

	assert.EqualValues(t, 3, inner.texts.Load(), "alpha is served from the cache the second time")
	assert.Len(t, mr.DB(config.RedisEmbeddingCacheDB).Keys(), 3)
	assert.Equal(t, commonModels.HealthHealthy, a.Service.Health(context.Background()))
}

func TestAssemble_FallsBackWhenRedisOffline(t *testing.T) {
	inner := &countingEmbedder{}

	a, err := assemble(context.Background(), memoryConfig("127.0.0.1:1"), inner)
	require.NoError(t, err)
	defer a.Close()

	for i := 0; i < 2; i++ {
		_, err = a.Service.EmbedText(context.Background(), []string{"alpha"})
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, inner.texts.Load())
}

func TestAssemble_EndToEndOnMemoryIndex(t *testing.T) {
	cfg := memoryConfig("127.0.0.1:1")
	cfg.Cache.Enabled = false
	a, err := assemble(context.Background(), cfg, &countingEmbedder{})
	require.NoError(t, err)
	defer a.Close()

	report, err := a.Service.IngestText(context.Background(), "one two three", "doc1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChunksProcessed)

	docs, err := a.Service.ListDocuments(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc1", docs[0].DocumentID)
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(context.Background(), config.EmbedderConfig{Provider: "word2vec"})
	assert.Error(t, err)
}

func TestClose_Idempotent(t *testing.T) {
	a, err := assemble(context.Background(), memoryConfig("127.0.0.1:1"), &countingEmbedder{})
	require.NoError(t, err)
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
