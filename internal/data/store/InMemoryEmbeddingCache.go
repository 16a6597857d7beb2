package store

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	vector    []float32
	expiresAt time.Time
}

// InMemoryEmbeddingCache is the fallback used when Redis is offline. Expired
// entries are dropped lazily on read.
type InMemoryEmbeddingCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewInMemoryEmbeddingCache() *InMemoryEmbeddingCache {
	return &InMemoryEmbeddingCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *InMemoryEmbeddingCache) GetMany(ctx context.Context, keys []string) (map[string][]float32, error) {
	now := c.now()
	out := make(map[string][]float32, len(keys))
	var expired []string

	c.mu.RLock()
	for _, k := range keys {
		e, ok := c.entries[k]
		if !ok {
			continue
		}
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			expired = append(expired, k)
			continue
		}
		out[k] = append([]float32(nil), e.vector...)
	}
	c.mu.RUnlock()

	if len(expired) > 0 {
		c.mu.Lock()
		for _, k := range expired {
			if e, ok := c.entries[k]; ok && now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
	return out, nil
}

func (c *InMemoryEmbeddingCache) SetMany(ctx context.Context, entries map[string][]float32, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range entries {
		c.entries[k] = cacheEntry{vector: append([]float32(nil), v...), expiresAt: expiresAt}
	}
	return nil
}
