package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisValid   = "1"
	redisInvalid = "0"
)

// RedisCache shares verification outcomes between replicas. Expiry is left to Redis.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache stores entries under "<prefix>:<fingerprint>".
func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(fingerprint string) string {
	if c.prefix == "" {
		return fingerprint
	}
	return c.prefix + ":" + fingerprint
}

func (c *RedisCache) Lookup(ctx context.Context, fingerprint string) (bool, bool, error) {
	v, err := c.client.Get(ctx, c.key(fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("token cache lookup: %w", err)
	}
	return v == redisValid, true, nil
}

func (c *RedisCache) Store(ctx context.Context, fingerprint string, valid bool) error {
	v := redisInvalid
	if valid {
		v = redisValid
	}
	if err := c.client.Set(ctx, c.key(fingerprint), v, c.ttl).Err(); err != nil {
		return fmt.Errorf("token cache store: %w", err)
	}
	return nil
}
