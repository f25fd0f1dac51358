package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ChecksTotal    *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
	LookupErrors   *prometheus.CounterVec
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ChecksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phoneverify_checks_total",
			Help: "Phone number checks by outcome",
		}, []string{"outcome"}),
		LookupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "phoneverify_lookup_duration_seconds",
			Help:    "Latency of remote lookup calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		LookupErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phoneverify_lookup_errors_total",
			Help: "Failed remote lookups by provider and error category",
		}, []string{"provider", "category"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phoneverify_cache_hits_total",
			Help: "Cache reads that found an entry",
		}, []string{"backend"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "phoneverify_cache_misses_total",
			Help: "Cache reads that found no entry",
		}, []string{"backend"}),
	}
}

// RecordCheck counts a finished check.
func (m *Metrics) RecordCheck(outcome string) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(outcome).Inc()
}

// ObserveLookup records the duration of a remote lookup in seconds.
func (m *Metrics) ObserveLookup(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.LookupDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordLookupError counts a failed remote lookup.
func (m *Metrics) RecordLookupError(provider, category string) {
	if m == nil {
		return
	}
	m.LookupErrors.WithLabelValues(provider, category).Inc()
}

func (m *Metrics) RecordCacheHit(backend string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(backend).Inc()
}

func (m *Metrics) RecordCacheMiss(backend string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(backend).Inc()
}
