package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/domain/ragErrors"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var tracer = otel.Tracer("docvector.vectordb.qdrant")

// fields filtered on by retrieval, listing and deletion
var indexedPayloadFields = []string{commonModels.PayloadUserID, commonModels.PayloadDocumentID}

// pointsClient is the part of *qdrant.Client the store uses.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	ScrollAndOffset(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, *qdrant.PointId, error)
	Close() error
}

type Store struct {
	client     pointsClient
	collection string
	timeout    time.Duration
	logger     *logger_i.Logger
}

// NewStore connects to Qdrant over gRPC. The collection itself is created by EnsureCollection.
func NewStore(cfg config.QdrantConfig) (*Store, error) {
	logger := logger_i.NewLogger("Qdrant")
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   cfg.UseTLS,
		PoolSize: uint(cfg.PoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "host", cfg.Host, "port", cfg.Port, "error", err)
		return nil, ragErrors.Wrap(ragErrors.KindIndexUnavailable, "qdrant_connect", err)
	}
	logger.Info("Qdrant client created", "host", cfg.Host, "port", cfg.Port, "collection", cfg.Collection)
	return newWithClient(client, cfg.Collection, cfg.Timeout), nil
}

func newWithClient(client pointsClient, collection string, timeout time.Duration) *Store {
	if collection == "" {
		collection = config.QdrantCollectionName
	}
	return &Store{
		client:     client,
		collection: collection,
		timeout:    timeout,
		logger:     logger_i.NewLogger("Qdrant"),
	}
}

func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	s.logger.Info("Shutting down Qdrant")
	return s.client.Close()
}

func (s *Store) EnsureCollection(ctx context.Context, dimension int, metric commonModels.Metric) error {
	if dimension <= 0 {
		return ragErrors.InvalidInput("ensure_collection", "dimension must be positive, got %d", dimension)
	}
	if metric != commonModels.MetricCosine {
		return ragErrors.InvalidInput("ensure_collection", "unsupported metric %q", metric)
	}

	ctx, span := tracer.Start(ctx, "QdrantStore.EnsureCollection")
	defer span.End()
	span.SetAttributes(attribute.String("collection", s.collection), attribute.Int("dimension", dimension))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return s.fail(ctx, span, "ensure_collection", err)
	}
	if exists {
		span.SetStatus(codes.Ok, "exists")
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		// another replica may have won the race
		if st, ok := status.FromError(err); !ok || st.Code() != grpccodes.AlreadyExists {
			return s.fail(ctx, span, "ensure_collection", err)
		}
	}

	for _, field := range indexedPayloadFields {
		_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.PtrOf(qdrant.FieldType_FieldTypeKeyword),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return s.fail(ctx, span, "ensure_collection", err)
		}
	}

	s.logger.FromContext(ctx).Info("Created collection", "collection", s.collection, "dimension", dimension)
	span.SetStatus(codes.Ok, "created")
	return nil
}

func (s *Store) Upsert(ctx context.Context, points []commonModels.IndexedPoint) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("collection", s.collection), attribute.Int("points", len(points)))

	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		payload, err := toQdrantPayload(p.Payload)
		if err != nil {
			return s.fail(ctx, span, "upsert", err)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return s.fail(ctx, span, "upsert", err)
	}
	span.SetStatus(codes.Ok, "success")
	return nil
}

func (s *Store) Search(ctx context.Context, vector []float32, filter commonModels.Filter, limit int, threshold float32) ([]commonModels.Hit, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Search")
	defer span.End()
	span.SetAttributes(attribute.String("collection", s.collection), attribute.Int("limit", limit))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         toQdrantFilter(filter),
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, s.fail(ctx, span, "search", err)
	}

	hits := make([]commonModels.Hit, 0, len(result))
	for _, point := range result {
		hits = append(hits, commonModels.Hit{
			ID:      pointIDString(point.GetId()),
			Score:   point.GetScore(),
			Payload: fromQdrantPayload(point.GetPayload()),
		})
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	span.SetStatus(codes.Ok, "success")
	return hits, nil
}

func (s *Store) Delete(ctx context.Context, filter commonModels.Filter) error {
	ctx, span := tracer.Start(ctx, "QdrantStore.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("collection", s.collection))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: toQdrantFilter(filter),
			},
		},
	})
	if err != nil {
		return s.fail(ctx, span, "delete", err)
	}
	span.SetStatus(codes.Ok, "success")
	return nil
}

// Scroll returns payloads only; vectors are not fetched.
func (s *Store) Scroll(ctx context.Context, filter commonModels.Filter, limit int, offset string) ([]commonModels.IndexedPoint, string, error) {
	ctx, span := tracer.Start(ctx, "QdrantStore.Scroll")
	defer span.End()
	span.SetAttributes(attribute.String("collection", s.collection), attribute.Int("limit", limit))

	request := &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter:         toQdrantFilter(filter),
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	}
	if offset != "" {
		request.Offset = qdrant.NewID(offset)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, next, err := s.client.ScrollAndOffset(ctx, request)
	if err != nil {
		return nil, "", s.fail(ctx, span, "scroll", err)
	}

	points := make([]commonModels.IndexedPoint, 0, len(result))
	for _, point := range result {
		points = append(points, commonModels.IndexedPoint{
			ID:      pointIDString(point.GetId()),
			Payload: fromQdrantPayload(point.GetPayload()),
		})
	}
	span.SetStatus(codes.Ok, "success")
	return points, pointIDString(next), nil
}

func (s *Store) Health(ctx context.Context) commonModels.HealthStatus {
	if s.client == nil {
		return commonModels.HealthNotInitialized
	}
	ctx, span := tracer.Start(ctx, "QdrantStore.Health")
	defer span.End()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.client.GetCollectionInfo(ctx, s.collection); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if st, ok := status.FromError(err); ok && st.Code() == grpccodes.NotFound {
			return commonModels.HealthNotInitialized
		}
		s.logger.FromContext(ctx).Warn("Qdrant health check failed", "error", err)
		return commonModels.HealthUnhealthy
	}
	span.SetStatus(codes.Ok, "healthy")
	return commonModels.HealthHealthy
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	code := "unknown"
	if st, ok := status.FromError(err); ok {
		code = st.Code().String()
	}
	s.logger.FromContext(ctx).Error("Qdrant operation failed", "op", op, "collection", s.collection, "grpcCode", code, "error", err)
	return ragErrors.EnsureKind(ragErrors.KindIndexUnavailable, op, err)
}

func toQdrantFilter(filter commonModels.Filter) *qdrant.Filter {
	if len(filter.Must) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filter.Must))
	for _, c := range filter.Must {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: c.Key,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keyword{Keyword: c.Value},
					},
				},
			},
		})
	}
	return &qdrant.Filter{Must: conditions}
}

var errUnsupportedPayload = errors.New("unsupported payload value")

func toQdrantPayload(payload commonModels.Payload) (map[string]*qdrant.Value, error) {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
		case int:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
		case int64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
		case float64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
		case float32:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(val)}}
		case bool:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
		default:
			return nil, ragErrors.Wrap(ragErrors.KindIndexUnavailable, "payload", fmt.Errorf("%w: %s is %T", errUnsupportedPayload, k, v))
		}
	}
	return out, nil
}

func fromQdrantPayload(payload map[string]*qdrant.Value) commonModels.Payload {
	out := make(commonModels.Payload, len(payload))
	for k, v := range payload {
		switch val := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			out[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = val.BoolValue
		}
	}
	return out
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}
