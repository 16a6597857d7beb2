package redisStore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// MGetBytes returns the raw values for keys; missing keys come back as nil.
func (s *Store) MGetBytes(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(values))
	for i, v := range values {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

// SetMany writes every entry with the same expiration in one pipeline round trip.
func (s *Store) SetMany(ctx context.Context, entries map[string][]byte, expiration time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, k, v, expiration)
		}
		return nil
	})
	return err
}
