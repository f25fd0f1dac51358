// Package verify decides whether a phone number is valid by combining a local
// E.164 check, an optional result cache and a remote lookup.
package verify

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/ports"
	"phoneverify/internal/lookup/providers"
	"phoneverify/internal/platform/metrics"
	"phoneverify/pkg/requestcontext"
)

const tracerName = "phoneverify/internal/lookup/verify"

// cacheKeyPrefix is prepended to the phone number to form the cache key.
const cacheKeyPrefix = "key-"

// e164Pattern is the syntactic pre-check applied before any remote call.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// CacheKey returns the cache key under which the outcome for phoneNumber is
// stored.
func CacheKey(phoneNumber string) string {
	return cacheKeyPrefix + phoneNumber
}

// IsE164 reports whether phoneNumber is syntactically an E.164 number.
func IsE164(phoneNumber string) bool {
	return e164Pattern.MatchString(phoneNumber)
}

// Verifier runs the validation pipeline. It keeps the messages of the last
// check, so a Verifier must not be shared between goroutines.
type Verifier struct {
	client     ports.LookupClient
	cache      ports.CacheStore
	parameters params.Set
	pending    map[string]string

	providerID string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer

	outcome  Outcome
	cached   bool
	messages map[string]string
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithCache enables the cache steps of the pipeline.
func WithCache(cache ports.CacheStore) Option {
	return func(v *Verifier) {
		v.cache = cache
	}
}

// WithQueryParameters sets raw lookup parameters. They are filtered and
// validated by New exactly as SetQueryParameters would.
func WithQueryParameters(raw map[string]string) Option {
	return func(v *Verifier) {
		v.pending = raw
	}
}

// WithParameterSet installs an already normalised parameter set, skipping
// validation. Use it with the output of params.Normalize.
func WithParameterSet(set params.Set) Option {
	return func(v *Verifier) {
		v.parameters = set.Clone()
	}
}

// WithProviderID names the lookup client in logs and metrics.
func WithProviderID(id string) Option {
	return func(v *Verifier) {
		v.providerID = id
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(v *Verifier) {
		if tracer != nil {
			v.tracer = tracer
		}
	}
}

// New builds a Verifier around client. It returns an
// *params.InvalidParametersError if the parameters given through
// WithQueryParameters fail validation. New panics if client is nil.
func New(client ports.LookupClient, opts ...Option) (*Verifier, error) {
	if client == nil {
		panic("verify: nil lookup client")
	}
	v := &Verifier{
		client:     client,
		parameters: params.Set{},
		providerID: "default",
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		messages:   map[string]string{},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.pending != nil {
		raw := v.pending
		v.pending = nil
		if err := v.SetQueryParameters(raw); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// SetQueryParameters replaces the lookup parameters. Unsupported keys and
// fields are dropped. If any supported value is invalid the previous set is
// kept and an *params.InvalidParametersError is returned.
func (v *Verifier) SetQueryParameters(raw map[string]string) error {
	set, err := params.Normalize(raw)
	if err != nil {
		return err
	}
	v.parameters = set
	return nil
}

// QueryParameters returns a copy of the parameters sent with each lookup.
func (v *Verifier) QueryParameters() params.Set {
	return v.parameters.Clone()
}

// Messages returns the failure message of the last check keyed by message
// key. It is empty after a successful check.
func (v *Verifier) Messages() map[string]string {
	out := make(map[string]string, len(v.messages))
	for k, msg := range v.messages {
		out[k] = msg
	}
	return out
}

// Outcome returns the classification of the last check.
func (v *Verifier) Outcome() Outcome {
	return v.outcome
}

// Cached reports whether the last check was answered from the cache.
func (v *Verifier) Cached() bool {
	return v.cached
}

// IsValid reports whether phoneNumber is valid. A cached true is returned
// without further work. Otherwise the number must be E.164 and the lookup
// client must confirm it; the result is written back to the cache.
func (v *Verifier) IsValid(ctx context.Context, phoneNumber string) bool {
	ctx, span := v.tracer.Start(ctx, "verify.IsValid",
		trace.WithAttributes(attribute.String("lookup.provider", v.providerID)),
	)
	defer span.End()

	v.messages = map[string]string{}
	v.cached = false
	key := CacheKey(phoneNumber)

	if v.cachedValid(ctx, key) {
		v.cached = true
		v.finish(span, OutcomeValid, phoneNumber)
		return true
	}

	outcome := v.evaluate(ctx, span, phoneNumber)
	valid := outcome == OutcomeValid
	v.store(ctx, key, valid)
	v.finish(span, outcome, phoneNumber)
	return valid
}

func (v *Verifier) evaluate(ctx context.Context, span trace.Span, phoneNumber string) Outcome {
	if !IsE164(phoneNumber) {
		return OutcomeInvalidFormat
	}

	start := time.Now()
	valid, err := v.client.Lookup(ctx, phoneNumber, v.parameters)
	v.metrics.ObserveLookup(v.providerID, time.Since(start).Seconds())
	if err != nil {
		category := providers.GetCategory(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		v.metrics.RecordLookupError(v.providerID, string(category))
		v.logger.WarnContext(ctx, "phone number lookup failed",
			"provider", v.providerID,
			"category", category,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return OutcomeNetworkFailure
	}
	if !valid {
		return OutcomeInvalidFormat
	}
	return OutcomeValid
}

func (v *Verifier) finish(span trace.Span, outcome Outcome, phoneNumber string) {
	v.outcome = outcome
	if key, ok := outcome.messageKey(); ok {
		v.messages[key] = renderMessage(key, phoneNumber)
	}
	span.SetAttributes(
		attribute.String("verify.outcome", string(outcome)),
		attribute.Bool("verify.cache_hit", v.cached),
	)
	v.metrics.RecordCheck(string(outcome))
}

// cachedValid reports whether the cache holds true for key. Cache errors are
// logged and treated as a miss.
func (v *Verifier) cachedValid(ctx context.Context, key string) bool {
	if v.cache == nil {
		return false
	}
	has, err := v.cache.Has(ctx, key)
	if err != nil {
		v.logger.WarnContext(ctx, "cache lookup failed", "error", err)
		return false
	}
	if !has {
		return false
	}
	valid, err := v.cache.Get(ctx, key)
	if err != nil {
		v.logger.WarnContext(ctx, "cache read failed", "error", err)
		return false
	}
	return valid
}

func (v *Verifier) store(ctx context.Context, key string, valid bool) {
	if v.cache == nil {
		return
	}
	if err := v.cache.Set(ctx, key, valid); err != nil {
		v.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}
