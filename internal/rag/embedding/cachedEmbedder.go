package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/metrics"
	"github.com/akolanti/docvector/pkg/logger_i"
)

// VectorCache stores vectors by key. A missing key is simply absent from the
// returned map.
type VectorCache interface {
	GetMany(ctx context.Context, keys []string) (map[string][]float32, error)
	SetMany(ctx context.Context, entries map[string][]float32, ttl time.Duration) error
}

type cachedEmbedder struct {
	inner  Embedder
	cache  VectorCache
	ttl    time.Duration
	logger *logger_i.Logger
}

// NewCachedEmbedder serves repeated texts from cache and only sends misses to
// inner. Cache failures are logged and treated as misses.
func NewCachedEmbedder(inner Embedder, cache VectorCache, ttl time.Duration) Embedder {
	return &cachedEmbedder{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger_i.NewLogger("embedding_cache"),
	}
}

func (c *cachedEmbedder) Dimension() int    { return c.inner.Dimension() }
func (c *cachedEmbedder) ModelName() string { return c.inner.ModelName() }

func (c *cachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := c.logger.FromContext(ctx)
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	hits, err := c.cache.GetMany(ctx, keys)
	if err != nil {
		log.Warn("embedding cache read failed", "error", err)
		hits = nil
	}

	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string
	for i, k := range keys {
		if v, ok := hits[k]; ok && len(v) == c.inner.Dimension() {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}
	metrics.CaptureCacheResult("hit", len(texts)-len(missIdx))
	metrics.CaptureCacheResult("miss", len(missIdx))

	if len(missTexts) == 0 {
		log.Debug("embedding cache served whole batch", "count", len(texts))
		return out, nil
	}

	vectors, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, ragErrors.New(ragErrors.KindEmbedderContractViolation, "embed",
			"embedder returned %d vectors for %d texts", len(vectors), len(missTexts))
	}

	fresh := make(map[string][]float32, len(vectors))
	for j, i := range missIdx {
		out[i] = vectors[j]
		if len(vectors[j]) == c.inner.Dimension() {
			fresh[keys[i]] = vectors[j]
		}
	}
	if err := c.cache.SetMany(ctx, fresh, c.ttl); err != nil {
		log.Warn("embedding cache write failed", "error", err)
	}
	return out, nil
}

func (c *cachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + c.inner.ModelName() + ":" + hex.EncodeToString(sum[:])
}
