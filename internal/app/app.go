// Package app builds the dependency graph shared by the HTTP server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/data/redisStore"
	"github.com/akolanti/docvector/internal/data/store"
	"github.com/akolanti/docvector/internal/domain/commonModels"
	"github.com/akolanti/docvector/internal/rag"
	"github.com/akolanti/docvector/internal/rag/embedding"
	"github.com/akolanti/docvector/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/docvector/internal/rag/embedding/localEmbedding"
	"github.com/akolanti/docvector/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/docvector/internal/rag/vectorDB"
	"github.com/akolanti/docvector/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/docvector/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/docvector/internal/worker"
	"github.com/akolanti/docvector/pkg/logger_i"
)

type App struct {
	Config  *config.Config
	Service rag.Service

	pool    *worker.Pool
	closers []io.Closer
	logger  *logger_i.Logger
}

// New connects every external service named in cfg. On error everything
// opened so far is closed again.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	base, err := NewEmbedder(ctx, cfg.Embedder)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, cfg, base)
}

// NewEmbedder picks the embedding provider named in cfg.
func NewEmbedder(ctx context.Context, cfg config.EmbedderConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case config.EmbeddingProviderGoogle:
		return googleEmbedding.New(ctx, cfg)
	case config.EmbeddingProviderOpenAI:
		return openaiEmbedding.New(cfg)
	case config.EmbeddingProviderLocal, "":
		return localEmbedding.New(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func assemble(ctx context.Context, cfg *config.Config, base embedding.Embedder) (*App, error) {
	a := &App{Config: cfg, logger: logger_i.NewLogger("App")}
	if c, ok := base.(embedding.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.pool = worker.NewPool(worker.ConfigFrom(cfg.Worker))
	a.pool.Start()

	embedder := embedding.NewDispatchedEmbedder(base, a.pool)
	if cfg.Cache.Enabled {
		embedder = embedding.NewCachedEmbedder(embedder, a.vectorCache(ctx, cfg.Redis), cfg.Cache.TTL)
	}

	index, err := a.openIndex(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := index.EnsureCollection(ctx, embedder.Dimension(), commonModels.MetricCosine); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to prepare collection %s: %w", cfg.Qdrant.Collection, err)
	}

	a.Service = rag.NewService(index, embedder, rag.OptionsFrom(cfg))
	a.logger.Info("Services ready",
		"embedder", embedder.ModelName(), "dimension", embedder.Dimension(),
		"index", cfg.Index.Backend, "cache", cfg.Cache.Enabled)
	return a, nil
}

// vectorCache prefers Redis and falls back to process memory when it is offline.
func (a *App) vectorCache(ctx context.Context, cfg config.RedisConfig) embedding.VectorCache {
	redis, err := redisStore.NewStore(ctx, cfg)
	if err != nil {
		a.logger.Error("Redis is offline, using in-memory embedding cache", "error", err)
		return store.NewInMemoryEmbeddingCache()
	}
	a.closers = append(a.closers, redis)
	return store.NewRedisEmbeddingCache(redis)
}

func (a *App) openIndex(ctx context.Context, cfg *config.Config) (vectorDB.VectorIndex, error) {
	if cfg.Index.Backend == config.IndexBackendMemory {
		a.logger.Warn("Using in-memory vector index; documents are lost on restart")
		return memoryDB.New(cfg.Qdrant.Collection), nil
	}
	qdrant, err := qdrantDB.NewStore(cfg.Qdrant)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, qdrant)
	return qdrant, nil
}

// Close stops the worker pool and releases connections in reverse order of opening.
func (a *App) Close() error {
	if a.pool != nil {
		a.pool.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
