package main

import (
	"context"
	"fmt"
	"log/slog"

	"phoneverify/internal/lookup/cache"
	"phoneverify/internal/lookup/ports"
	"phoneverify/internal/lookup/providers"
	"phoneverify/internal/lookup/providers/static"
	"phoneverify/internal/lookup/providers/twilio"
	"phoneverify/internal/platform/config"
	"phoneverify/internal/platform/metrics"
	"phoneverify/internal/platform/postgres"
	"phoneverify/internal/platform/redis"
	httptransport "phoneverify/internal/transport/http"
	"phoneverify/pkg/platform/circuit"
)

// buildCache opens the configured cache backend. The returned store is nil
// when caching is disabled.
func buildCache(ctx context.Context, cfg config.Config, m *metrics.Metrics, log *slog.Logger) (ports.CacheStore, map[string]httptransport.HealthCheck, func(), error) {
	noop := func() {}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return nil, nil, noop, nil

	case config.CacheMemory:
		return cache.NewInMemoryCache(cfg.Cache.TTL, cache.WithMemoryMetrics(m)), nil, noop, nil

	case config.CacheRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis cache connected")
		health := map[string]httptransport.HealthCheck{"redis": client.Health}
		return cache.NewRedisCache(client.Client, cfg.Cache.TTL, m), health, func() { _ = client.Close() }, nil

	case config.CachePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("database connection failed: %w", err)
		}
		store := cache.NewPostgresCache(db, cfg.Cache.TTL, cache.WithPostgresMetrics(m))
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		log.Info("postgres cache ready")
		health := map[string]httptransport.HealthCheck{"postgres": db.PingContext}
		return store, health, func() { _ = db.Close() }, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// buildProvider registers every lookup provider and selects the configured one.
func buildProvider(cfg config.LookupConfig, log *slog.Logger) (providers.Provider, error) {
	registry := providers.NewRegistry()
	if cfg.TwilioAccountSID != "" {
		if err := registry.Register(twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken,
			twilio.WithBaseURL(cfg.TwilioBaseURL),
			twilio.WithLogger(log),
		)); err != nil {
			return nil, err
		}
	}
	if err := registry.Register(static.New(0, cfg.StaticInvalid...)); err != nil {
		return nil, err
	}

	p, err := registry.Get(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("lookup provider %q unavailable (registered: %v): %w", cfg.Provider, registry.IDs(), err)
	}
	if cfg.CircuitFailureThreshold > 0 {
		breaker := circuit.New(p.ID(),
			circuit.WithFailureThreshold(cfg.CircuitFailureThreshold),
			circuit.WithCooldown(cfg.CircuitCooldown),
		)
		return providers.NewGuarded(p, breaker, log), nil
	}
	return p, nil
}
