package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"phoneverify/internal/platform/metrics"
	"phoneverify/pkg/platform/sentinel"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS phone_validity_cache (
	cache_key  TEXT PRIMARY KEY,
	valid      BOOLEAN NOT NULL,
	checked_at TIMESTAMPTZ NOT NULL
)`

// PostgresCache persists outcomes in PostgreSQL. Rows older than the TTL are
// treated as absent; a zero TTL never expires rows.
type PostgresCache struct {
	db      *sql.DB
	ttl     time.Duration
	clock   Clock
	metrics *metrics.Metrics
}

// PostgresOption configures a PostgresCache.
type PostgresOption func(*PostgresCache)

// WithPostgresClock sets the clock used for expiry, for tests.
func WithPostgresClock(clock Clock) PostgresOption {
	return func(c *PostgresCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithPostgresMetrics(m *metrics.Metrics) PostgresOption {
	return func(c *PostgresCache) {
		c.metrics = m
	}
}

// NewPostgresCache constructs a PostgreSQL-backed cache.
func NewPostgresCache(db *sql.DB, ttl time.Duration, opts ...PostgresOption) *PostgresCache {
	c := &PostgresCache{
		db:    db,
		ttl:   ttl,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureSchema creates the cache table if it does not exist.
func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

func (c *PostgresCache) Has(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM phone_validity_cache WHERE cache_key = $1 AND checked_at > $2)`,
		key, c.cutoff(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check postgres cache: %w", err)
	}
	if exists {
		c.metrics.RecordCacheHit(BackendPostgres)
	} else {
		c.metrics.RecordCacheMiss(BackendPostgres)
	}
	return exists, nil
}

func (c *PostgresCache) Get(ctx context.Context, key string) (bool, error) {
	var valid bool
	err := c.db.QueryRowContext(ctx,
		`SELECT valid FROM phone_validity_cache WHERE cache_key = $1 AND checked_at > $2`,
		key, c.cutoff(),
	).Scan(&valid)
	if errors.Is(err, sql.ErrNoRows) {
		return false, sentinel.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("read postgres cache: %w", err)
	}
	return valid, nil
}

func (c *PostgresCache) Set(ctx context.Context, key string, value bool) error {
	query := `
		INSERT INTO phone_validity_cache (cache_key, valid, checked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			valid = EXCLUDED.valid,
			checked_at = EXCLUDED.checked_at
	`
	if _, err := c.db.ExecContext(ctx, query, key, value, c.clock()); err != nil {
		return fmt.Errorf("write postgres cache: %w", err)
	}
	return nil
}

// cutoff is the oldest checked_at still considered fresh.
func (c *PostgresCache) cutoff() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.clock().Add(-c.ttl)
}
