package vectorDB

import (
	"context"

	"github.com/akolanti/docvector/internal/domain/commonModels"
)

// VectorIndex is a single collection of fixed-dimension vectors with payloads.
// The collection is chosen when the implementation is constructed. Failures to
// reach the backing store are reported as ragErrors.KindIndexUnavailable.
type VectorIndex interface {
	// EnsureCollection creates the collection if it is missing. An existing
	// collection is left untouched.
	EnsureCollection(ctx context.Context, dimension int, metric commonModels.Metric) error

	// Upsert writes all points in one call; either every point is stored or the call fails.
	Upsert(ctx context.Context, points []commonModels.IndexedPoint) error

	// Search returns at most limit hits matching filter with score >= threshold,
	// best first.
	Search(ctx context.Context, vector []float32, filter commonModels.Filter, limit int, threshold float32) ([]commonModels.Hit, error)

	// Delete removes every point matching filter. Matching nothing is not an error.
	Delete(ctx context.Context, filter commonModels.Filter) error

	// Scroll pages through points matching filter. An empty offset starts at the
	// beginning; an empty next offset means there are no more points.
	Scroll(ctx context.Context, filter commonModels.Filter, limit int, offset string) (points []commonModels.IndexedPoint, next string, err error)

	Health(ctx context.Context) commonModels.HealthStatus
}
