package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	DB     int
	logger *logger_i.Logger
}

// NewStore connects and pings Redis; the caller decides whether to fall back
// when it is offline.
func NewStore(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})
	store := &Store{client: newClient, DB: cfg.DB, logger: logger_i.NewLogger("RedisStore").With("db", cfg.DB)}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = newClient.Close()
		return nil, fmt.Errorf("redis at %s is offline: %w", cfg.Addr, err)
	}

	store.logger.Info("Redis store init successfully", "addr", cfg.Addr)
	return store, nil
}

func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("RedisStore"),
	}
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis store")
	return s.client.Close()
}
