package embedding

import (
	"context"
	"time"

	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/internal/metrics"
)

// Embedder turns a batch of texts into vectors of a fixed dimension, one per
// input and in input order. An unreachable or unloaded model is reported as
// ragErrors.KindEmbedderUnavailable.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// Closer is implemented by embedders holding native or network resources.
type Closer interface {
	Close() error
}

// EmbedChecked calls e.Embed and verifies the answer holds one vector of
// e.Dimension() per text. Untyped failures are reported as EmbedderUnavailable.
func EmbedChecked(ctx context.Context, op string, e Embedder, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := e.Embed(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, ragErrors.EnsureKind(ragErrors.KindEmbedderUnavailable, op, err)
	}
	if len(vectors) != len(texts) {
		return nil, ragErrors.New(ragErrors.KindEmbedderContractViolation, op,
			"embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	dimension := e.Dimension()
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, ragErrors.New(ragErrors.KindEmbedderContractViolation, op,
				"vector %d has dimension %d, expected %d", i, len(v), dimension)
		}
	}
	return vectors, nil
}
