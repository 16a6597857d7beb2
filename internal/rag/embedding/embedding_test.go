package embedding_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/docvector/internal/data/store"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/rag/embedding"
	"github.com/akolanti/docvector/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockEmbedder struct {
	OnEmbed func(ctx context.Context, texts []string) ([][]float32, error)
	mu      sync.Mutex
	Seen    [][]string
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.Seen = append(m.Seen, append([]string(nil), texts...))
	m.mu.Unlock()
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (m *MockEmbedder) Dimension() int    { return 2 }
func (m *MockEmbedder) ModelName() string { return "mock" }

type failingCache struct{}

func (failingCache) GetMany(context.Context, []string) (map[string][]float32, error) {
	return nil, errors.New("redis down")
}
func (failingCache) SetMany(context.Context, map[string][]float32, time.Duration) error {
	return errors.New("redis down")
}

func TestCachedEmbedder_OnlyMissesReachModel(t *testing.T) {
	inner := &MockEmbedder{}
	cached := embedding.NewCachedEmbedder(inner, store.NewInMemoryEmbeddingCache(), time.Hour)
	ctx := context.Background()

	first, err := cached.Embed(ctx, []string{"aa", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1}, {3, 1}}, first)

	second, err := cached.Embed(ctx, []string{"c", "bbb", "aa"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {3, 1}, {2, 1}}, second)

	require.Len(t, inner.Seen, 2)
	assert.Equal(t, []string{"c"}, inner.Seen[1])

	third, err := cached.Embed(ctx, []string{"aa"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1}}, third)
	assert.Len(t, inner.Seen, 2, "fully cached batch must not call the model")

	assert.Equal(t, "mock", cached.ModelName())
	assert.Equal(t, 2, cached.Dimension())
}

func TestCachedEmbedder_CacheFailureDegradesToMiss(t *testing.T) {
	inner := &MockEmbedder{}
	cached := embedding.NewCachedEmbedder(inner, failingCache{}, time.Hour)

	vectors, err := cached.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}}, vectors)
}

func TestCachedEmbedder_ShortAnswerIsContractViolation(t *testing.T) {
	inner := &MockEmbedder{OnEmbed: func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 1}}, nil
	}}
	cached := embedding.NewCachedEmbedder(inner, store.NewInMemoryEmbeddingCache(), time.Hour)

	_, err := cached.Embed(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ragErrors.ErrEmbedderContractViolation)
}

func TestDispatchedEmbedder_RunsOnPool(t *testing.T) {
	pool := worker.NewPool(worker.Config{Min: 1, Max: 2, IdleTimeout: time.Minute, QueueSize: 4})
	pool.Start()
	t.Cleanup(pool.Stop)

	d := embedding.NewDispatchedEmbedder(&MockEmbedder{}, pool)
	vectors, err := d.Embed(context.Background(), []string{"abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{4, 1}}, vectors)
}

func TestDispatchedEmbedder_CallerCancels(t *testing.T) {
	pool := worker.NewPool(worker.Config{Min: 1, Max: 1, IdleTimeout: time.Minute, QueueSize: 4})
	pool.Start()
	t.Cleanup(pool.Stop)

	release := make(chan struct{})
	slow := &MockEmbedder{OnEmbed: func(ctx context.Context, texts []string) ([][]float32, error) {
		<-release
		return [][]float32{{1, 1}}, nil
	}}
	d := embedding.NewDispatchedEmbedder(slow, pool)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := d.Embed(ctx, []string{"a"})
	close(release)

	assert.ErrorIs(t, err, ragErrors.ErrEmbedderUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatchedEmbedder_StoppedPool(t *testing.T) {
	pool := worker.NewPool(worker.Config{Min: 1, Max: 1, QueueSize: 1})
	pool.Start()
	pool.Stop()

	d := embedding.NewDispatchedEmbedder(&MockEmbedder{}, pool)
	_, err := d.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ragErrors.ErrEmbedderUnavailable)
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
}
