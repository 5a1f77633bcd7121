// api/cache/backend.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	authz_errors "github.com/veridian-id/authz/api/errors"
)

// Backend is the distributed (L2) cache shared across instances. A miss is
// reported as ErrCacheMiss; any other error means the backend is degraded
// and the orchestrator falls back to L1.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisBackend adapts a go-redis client to the Backend interface.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, authz_errors.ErrCacheMiss
	} else if err != nil {
		return nil, fmt.Errorf("failed to get key from cache: %w", err)
	}
	return value, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache key: %w", err)
	}
	return nil
}

func (b *RedisBackend) Del(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key from cache: %w", err)
	}
	return nil
}

var _ Backend = (*RedisBackend)(nil)
