package providers

import (
	"context"
	"log/slog"

	"phoneverify/internal/lookup/params"
	"phoneverify/pkg/platform/circuit"
)

// Guarded short-circuits lookups to a provider that keeps failing at the
// transport level. Data and authentication errors do not trip the breaker.
type Guarded struct {
	Provider
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewGuarded wraps p with breaker.
func NewGuarded(p Provider, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{Provider: p, breaker: breaker, logger: logger.With("provider", p.ID())}
}

func (g *Guarded) Lookup(ctx context.Context, phoneNumber string, queryParameters params.Set) (bool, error) {
	if !g.breaker.Allow() {
		return false, NewProviderError(ErrorProviderOutage, g.ID(), "circuit open", nil)
	}

	valid, err := g.Provider.Lookup(ctx, phoneNumber, queryParameters)
	if err != nil && IsRetryable(err) {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "lookup circuit opened", "breaker", g.breaker.Name())
		}
		return valid, err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "lookup circuit closed", "breaker", g.breaker.Name())
	}
	return valid, err
}
