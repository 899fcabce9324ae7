package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keeper remembers which document a client Idempotency-Key produced, so a
// retried save-and-send returns the first result instead of a duplicate.
type Keeper interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, resourceID string) error
}

type RedisKeeper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKeeper(redisAddr string, ttl time.Duration) (*RedisKeeper, error) {
	const op = "idempotency.NewRedisKeeper"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisKeeper{client: client, ttl: ttl}, nil
}

func redisKey(scope, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", scope, key)
}

func (r *RedisKeeper) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	const op = "idempotency.RedisKeeper.Lookup"

	id, err := r.client.Get(ctx, redisKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return id, true, nil
}

// Remember stores resourceID under key unless the key is already taken.
func (r *RedisKeeper) Remember(ctx context.Context, scope, key, resourceID string) error {
	const op = "idempotency.RedisKeeper.Remember"

	_, err := r.client.SetNX(ctx, redisKey(scope, key), resourceID, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisKeeper) Close() error {
	return r.client.Close()
}

// Noop is used when no redis is configured: every request is treated as new.
type Noop struct{}

func (Noop) Lookup(context.Context, string, string) (string, bool, error) { return "", false, nil }
func (Noop) Remember(context.Context, string, string, string) error { return nil }
