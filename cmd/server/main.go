package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"phoneverify/internal/lookup/service"
	"phoneverify/internal/platform/config"
	"phoneverify/internal/platform/httpserver"
	"phoneverify/internal/platform/logger"
	"phoneverify/internal/platform/metrics"
	httptransport "phoneverify/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small.
func main() {
	if err := run(); err != nil {
		slog.Error("phoneverify exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	log := logger.New(os.Stdout, cfg.Server.Env, cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, health, closeCache, err := buildCache(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer closeCache()

	provider, err := buildProvider(cfg.Lookup, log)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLookupTimeout(cfg.Lookup.Timeout),
		service.WithBatchConcurrency(cfg.Lookup.BatchConcurrency),
		service.WithProviderID(provider.ID()),
		service.WithLogger(log),
		service.WithMetrics(m),
	}
	if store != nil {
		opts = append(opts, service.WithCache(store))
	}
	svc, err := service.New(provider, cfg.Lookup.DefaultQueryParameters(), opts...)
	if err != nil {
		return fmt.Errorf("default lookup parameters: %w", err)
	}

	router := httptransport.NewRouter(
		httptransport.NewValidityHandler(svc, log),
		httptransport.RouterDeps{
			Logger:       log,
			Gatherer:     reg,
			HealthChecks: health,
		},
	)

	log.Info("starting phoneverify",
		"addr", cfg.Server.Addr,
		"provider", provider.ID(),
		"cache", cfg.Cache.Backend,
	)
	srv := httpserver.New(cfg.Server.Addr, router)
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}
