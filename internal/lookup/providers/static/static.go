// Package static provides a deterministic in-process lookup client for local
// development and tests. It never touches the network.
package static

import (
	"context"
	"time"

	"phoneverify/internal/lookup/params"
	"phoneverify/internal/lookup/providers"
)

// ProviderID identifies this provider in configuration and metrics.
const ProviderID = "static"

// Provider reports every number valid except the configured invalid ones.
type Provider struct {
	Latency time.Duration
	Invalid map[string]bool
}

// New creates a static provider that reports the given numbers invalid.
func New(latency time.Duration, invalid ...string) *Provider {
	p := &Provider{Latency: latency, Invalid: make(map[string]bool, len(invalid))}
	for _, n := range invalid {
		p.Invalid[n] = true
	}
	return p
}

func (p *Provider) ID() string {
	return ProviderID
}

// Lookup waits for the configured latency, honouring ctx, then answers.
func (p *Provider) Lookup(ctx context.Context, phoneNumber string, _ params.Set) (bool, error) {
	if p.Latency > 0 {
		t := time.NewTimer(p.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false, providers.TransportError(ProviderID, ctx.Err())
		case <-t.C:
		}
	}
	return !p.Invalid[phoneNumber], nil
}
