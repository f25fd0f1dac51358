// Package cache provides CacheStore implementations for check outcomes.
package cache

import (
	"context"
	"sync"
	"time"

	"phoneverify/internal/platform/metrics"
	"phoneverify/pkg/platform/sentinel"
)

// Backend names used as metric labels.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Clock returns the current time.
type Clock func() time.Time

type cachedValue struct {
	value    bool
	storedAt time.Time
}

// InMemoryCache keeps outcomes in process with TTL expiration.
// A zero TTL keeps entries until they are overwritten.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cachedValue
	ttl     time.Duration
	clock   Clock
	metrics *metrics.Metrics
}

// MemoryOption configures an InMemoryCache.
type MemoryOption func(*InMemoryCache)

// WithMemoryClock sets the clock used for expiry, for tests.
func WithMemoryClock(clock Clock) MemoryOption {
	return func(c *InMemoryCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithMemoryMetrics(m *metrics.Metrics) MemoryOption {
	return func(c *InMemoryCache) {
		c.metrics = m
	}
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
func NewInMemoryCache(ttl time.Duration, opts ...MemoryOption) *InMemoryCache {
	c := &InMemoryCache{
		entries: make(map[string]cachedValue),
		ttl:     ttl,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Has reports whether an unexpired entry exists for key.
func (c *InMemoryCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	_, ok := c.lookup(key)
	c.mu.RUnlock()

	if ok {
		c.metrics.RecordCacheHit(BackendMemory)
	} else {
		c.metrics.RecordCacheMiss(BackendMemory)
	}
	return ok, nil
}

// Get returns the stored value, or sentinel.ErrNotFound if the entry does
// not exist or has expired.
func (c *InMemoryCache) Get(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.lookup(key); ok {
		return v.value, nil
	}
	return false, sentinel.ErrNotFound
}

// Set stores value under key, resetting its age.
func (c *InMemoryCache) Set(_ context.Context, key string, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedValue{value: value, storedAt: c.clock()}
	return nil
}

// lookup must be called with c.mu held.
func (c *InMemoryCache) lookup(key string) (cachedValue, bool) {
	v, ok := c.entries[key]
	if !ok {
		return cachedValue{}, false
	}
	if c.ttl > 0 && c.clock().Sub(v.storedAt) >= c.ttl {
		return cachedValue{}, false
	}
	return v, true
}
