// Package service runs phone number checks for callers that need timeouts,
// per-request parameters or batches.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/ports"
	"phoneverify/internal/lookup/verify"
	"phoneverify/internal/platform/metrics"
)

const (
	defaultLookupTimeout    = 5 * time.Second
	defaultBatchConcurrency = 8
)

// Result is the outcome of one check.
type Result struct {
	PhoneNumber string
	Valid       bool
	Outcome     verify.Outcome
	Cached      bool
	Messages    map[string]string
}

// Service coordinates lookups with caching. Unlike a Verifier it is safe for
// concurrent use: each check runs on its own Verifier.
type Service struct {
	client      ports.LookupClient
	cache       ports.CacheStore
	defaults    params.Set
	timeout     time.Duration
	concurrency int
	providerID  string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithCache(cache ports.CacheStore) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLookupTimeout bounds each check. Zero disables the timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithBatchConcurrency limits how many checks of a batch run at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithProviderID(id string) Option {
	return func(s *Service) {
		s.providerID = id
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a Service. defaults are the lookup parameters sent with every
// check; they are validated once here.
func New(client ports.LookupClient, defaults map[string]string, opts ...Option) (*Service, error) {
	set, err := params.Normalize(defaults)
	if err != nil {
		return nil, err
	}
	s := &Service{
		client:      client,
		defaults:    set,
		timeout:     defaultLookupTimeout,
		concurrency: defaultBatchConcurrency,
		providerID:  "default",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "phone_validity_service")
	return s, nil
}

// Defaults returns a copy of the default lookup parameters.
func (s *Service) Defaults() params.Set {
	return s.defaults.Clone()
}

// Check validates phoneNumber with the default parameters.
func (s *Service) Check(ctx context.Context, phoneNumber string) Result {
	return s.run(ctx, phoneNumber, s.defaults)
}

// CheckWithParameters validates phoneNumber with raw merged over the default
// parameters. Invalid parameters are returned as *params.InvalidParametersError
// and no lookup is made.
func (s *Service) CheckWithParameters(ctx context.Context, phoneNumber string, raw map[string]string) (Result, error) {
	if len(raw) == 0 {
		return s.Check(ctx, phoneNumber), nil
	}
	merged := s.defaults.Clone()
	for k, v := range raw {
		merged[k] = v
	}
	set, err := params.Normalize(merged)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, phoneNumber, set), nil
}

// CheckBatch validates every number with the default parameters. Results are
// in input order. If ctx ends before the batch completes, its error is
// returned instead of partial results.
func (s *Service) CheckBatch(ctx context.Context, phoneNumbers []string) ([]Result, error) {
	results := make([]Result, len(phoneNumbers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, number := range phoneNumbers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Check(gctx, number)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) run(ctx context.Context, phoneNumber string, set params.Set) Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := []verify.Option{
		verify.WithParameterSet(set),
		verify.WithProviderID(s.providerID),
		verify.WithLogger(s.logger),
		verify.WithMetrics(s.metrics),
	}
	if s.cache != nil {
		opts = append(opts, verify.WithCache(s.cache))
	}
	v, err := verify.New(s.client, opts...)
	if err != nil {
		// WithParameterSet skips validation, so New cannot fail here.
		panic(err)
	}

	valid := v.IsValid(ctx, phoneNumber)
	return Result{
		PhoneNumber: phoneNumber,
		Valid:       valid,
		Outcome:     v.Outcome(),
		Cached:      v.Cached(),
		Messages:    v.Messages(),
	}
}
