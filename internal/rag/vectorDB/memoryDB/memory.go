// Package memoryDB is an in-process vector index using brute-force cosine
// similarity. It follows the same filter and scroll semantics as the Qdrant
// index and backs local development and tests.
package memoryDB

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
)

type Store struct {
	mu          sync.RWMutex
	collection  string
	initialized bool
	dimension   int
	order       []string
	points      map[string]commonModels.IndexedPoint
	// insertion sequence per id, kept after deletion so scroll offsets stay valid
	seq     map[string]uint64
	nextSeq uint64
}

func New(collection string) *Store {
	return &Store{
		collection: collection,
		points:     make(map[string]commonModels.IndexedPoint),
		seq:        make(map[string]uint64),
	}
}

func (s *Store) EnsureCollection(_ context.Context, dimension int, metric commonModels.Metric) error {
	if dimension <= 0 {
		return ragErrors.InvalidInput("ensure_collection", "dimension must be positive, got %d", dimension)
	}
	if metric != commonModels.MetricCosine {
		return ragErrors.InvalidInput("ensure_collection", "unsupported metric %q", metric)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	s.initialized = true
	s.dimension = dimension
	return nil
}

func (s *Store) Upsert(ctx context.Context, points []commonModels.IndexedPoint) error {
	if err := ctx.Err(); err != nil {
		return ragErrors.Wrap(ragErrors.KindIndexUnavailable, "upsert", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ragErrors.New(ragErrors.KindIndexUnavailable, "upsert", "collection %s does not exist", s.collection)
	}
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return ragErrors.New(ragErrors.KindIndexUnavailable, "upsert",
				"vector dimension error: expected %d, got %d", s.dimension, len(p.Vector))
		}
	}
	for _, p := range points {
		if _, exists := s.points[p.ID]; !exists {
			s.order = append(s.order, p.ID)
			s.seq[p.ID] = s.nextSeq
			s.nextSeq++
		}
		s.points[p.ID] = clonePoint(p)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, filter commonModels.Filter, limit int, threshold float32) ([]commonModels.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, ragErrors.Wrap(ragErrors.KindIndexUnavailable, "search", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ragErrors.New(ragErrors.KindIndexUnavailable, "search", "collection %s does not exist", s.collection)
	}
	if len(vector) != s.dimension {
		return nil, ragErrors.New(ragErrors.KindIndexUnavailable, "search",
			"vector dimension error: expected %d, got %d", s.dimension, len(vector))
	}

	var hits []commonModels.Hit
	for _, id := range s.order {
		p := s.points[id]
		if !filter.Matches(p.Payload) {
			continue
		}
		score := cosine(vector, p.Vector)
		if score < threshold {
			continue
		}
		hits = append(hits, commonModels.Hit{ID: p.ID, Score: score, Payload: clonePayload(p.Payload)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) Delete(ctx context.Context, filter commonModels.Filter) error {
	if err := ctx.Err(); err != nil {
		return ragErrors.Wrap(ragErrors.KindIndexUnavailable, "delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ragErrors.New(ragErrors.KindIndexUnavailable, "delete", "collection %s does not exist", s.collection)
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if filter.Matches(s.points[id].Payload) {
			delete(s.points, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}

func (s *Store) Scroll(ctx context.Context, filter commonModels.Filter, limit int, offset string) ([]commonModels.IndexedPoint, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", ragErrors.Wrap(ragErrors.KindIndexUnavailable, "scroll", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, "", ragErrors.New(ragErrors.KindIndexUnavailable, "scroll", "collection %s does not exist", s.collection)
	}

	start := 0
	if offset != "" {
		from, known := s.seq[offset]
		if !known {
			return nil, "", ragErrors.InvalidInput("scroll", "unknown scroll offset %q", offset)
		}
		// the offset point may have been deleted since the previous page
		start = sort.Search(len(s.order), func(i int) bool { return s.seq[s.order[i]] >= from })
	}

	var out []commonModels.IndexedPoint
	for _, id := range s.order[start:] {
		p := s.points[id]
		if !filter.Matches(p.Payload) {
			continue
		}
		if limit > 0 && len(out) == limit {
			return out, id, nil
		}
		out = append(out, clonePoint(p))
	}
	return out, "", nil
}

func (s *Store) Health(_ context.Context) commonModels.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return commonModels.HealthNotInitialized
	}
	return commonModels.HealthHealthy
}

// Len reports how many points are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func clonePoint(p commonModels.IndexedPoint) commonModels.IndexedPoint {
	return commonModels.IndexedPoint{
		ID:      p.ID,
		Vector:  append([]float32(nil), p.Vector...),
		Payload: clonePayload(p.Payload),
	}
}

func clonePayload(p commonModels.Payload) commonModels.Payload {
	out := make(commonModels.Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
