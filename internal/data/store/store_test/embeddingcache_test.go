package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/data/redisStore"
	"github.com/akolanti/docvector/internal/data/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisEmbeddingCache_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := store.NewRedisEmbeddingCache(redisStore.NewStoreFromClient(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	t.Run("Set and Get Roundtrip", func(t *testing.T) {
		err := cache.SetMany(ctx, map[string][]float32{
			"emb:a": {0.25, -1.5, 3},
			"emb:b": {1, 0, 0},
		}, time.Hour)
		require.NoError(t, err)

		got, err := cache.GetMany(ctx, []string{"emb:a", "emb:ghost", "emb:b"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, []float32{0.25, -1.5, 3}, got["emb:a"])
		assert.Equal(t, []float32{1, 0, 0}, got["emb:b"])
		assert.NotContains(t, got, "emb:ghost")
	})

	t.Run("Entries expire", func(t *testing.T) {
		require.NoError(t, cache.SetMany(ctx, map[string][]float32{"emb:ttl": {1}}, time.Minute))
		mr.FastForward(2 * time.Minute)

		got, err := cache.GetMany(ctx, []string{"emb:ttl"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Corrupt entry is skipped", func(t *testing.T) {
		require.NoError(t, mr.Set("emb:bad", "abc"))

		got, err := cache.GetMany(ctx, []string{"emb:bad"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Offline redis reports error", func(t *testing.T) {
		mr.Close()
		_, err := cache.GetMany(ctx, []string{"emb:a"})
		assert.Error(t, err)
	})
}

func TestNewStore_OfflineRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisStore.NewStore(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestInMemoryEmbeddingCache(t *testing.T) {
	cache := store.NewInMemoryEmbeddingCache()
	ctx := context.Background()

	original := []float32{1, 2, 3}
	require.NoError(t, cache.SetMany(ctx, map[string][]float32{"k": original}, time.Hour))
	original[0] = 99

	got, err := cache.GetMany(ctx, []string{"k", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float32{"k": {1, 2, 3}}, got)

	require.NoError(t, cache.SetMany(ctx, map[string][]float32{"short": {4}}, time.Nanosecond))
	time.Sleep(2 * time.Millisecond)
	got, err = cache.GetMany(ctx, []string{"short"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
