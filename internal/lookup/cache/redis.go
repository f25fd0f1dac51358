package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"phoneverify/internal/platform/metrics"
	"phoneverify/pkg/platform/sentinel"
)

const (
	// redisKeyPrefix namespaces cache entries in a shared Redis.
	redisKeyPrefix = "phoneverify:"

	redisTrue  = "1"
	redisFalse = "0"
)

// RedisCache stores outcomes in Redis with a per-key TTL. A zero TTL stores
// keys without expiry.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRedisCache constructs a Redis-backed cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
	}
}

func (c *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check redis cache: %w", err)
	}
	if n > 0 {
		c.metrics.RecordCacheHit(BackendRedis)
		return true, nil
	}
	c.metrics.RecordCacheMiss(BackendRedis)
	return false, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (bool, error) {
	v, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, sentinel.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("read redis cache: %w", err)
	}
	return v == redisTrue, nil
}

// Set uses SET with EX so the value and its expiry are written atomically.
func (c *RedisCache) Set(ctx context.Context, key string, value bool) error {
	v := redisFalse
	if value {
		v = redisTrue
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, v, c.ttl).Err(); err != nil {
		return fmt.Errorf("write redis cache: %w", err)
	}
	return nil
}
