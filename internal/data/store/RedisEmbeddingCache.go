package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/akolanti/docvector/internal/data/redisStore"
	"github.com/akolanti/docvector/pkg/logger_i"
)

type RedisEmbeddingCache struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisEmbeddingCache(store *redisStore.Store) *RedisEmbeddingCache {
	return &RedisEmbeddingCache{
		store:  store,
		logger: logger_i.NewLogger("EmbeddingCache"),
	}
}

func (c *RedisEmbeddingCache) GetMany(ctx context.Context, keys []string) (map[string][]float32, error) {
	raw, err := c.store.MGetBytes(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make(map[string][]float32, len(keys))
	for i, b := range raw {
		if b == nil {
			continue
		}
		v, err := decodeVector(b)
		if err != nil {
			c.logger.FromContext(ctx).Warn("dropping corrupt cache entry", "key", keys[i], "error", err)
			continue
		}
		out[keys[i]] = v
	}
	return out, nil
}

func (c *RedisEmbeddingCache) SetMany(ctx context.Context, entries map[string][]float32, ttl time.Duration) error {
	encoded := make(map[string][]byte, len(entries))
	for k, v := range entries {
		encoded[k] = encodeVector(v)
	}
	if err := c.store.SetMany(ctx, encoded, ttl); err != nil {
		return fmt.Errorf("redis pipeline set: %w", err)
	}
	return nil
}

// vectors are stored as little-endian float32 words
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector payload of %d bytes is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
