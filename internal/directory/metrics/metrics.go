// Package metrics exposes Unit Directory call and cache metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CallDuration  *prometheus.HistogramVec // by operation and outcome
	CacheHits     *prometheus.CounterVec   // by operation
	CacheMisses   *prometheus.CounterVec   // by operation
	Invalidations *prometheus.CounterVec   // by source (write, event)
	BreakerState  *prometheus.GaugeVec     // 0 closed, 1 open, 2 half open
}

// New registers the directory metrics with the default registry. Call it once per process.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics with reg; tests pass a fresh prometheus.NewRegistry().
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unitgate_directory_call_duration_seconds",
			Help:    "Latency of Unit Directory calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "outcome"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_directory_cache_hits_total",
			Help: "Directory reads served from Redis",
		}, []string{"operation"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_directory_cache_misses_total",
			Help: "Directory reads that fell through to the backend",
		}, []string{"operation"}),
		Invalidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_directory_cache_invalidations_total",
			Help: "Cache keys dropped after directory writes or membership events",
		}, []string{"source"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unitgate_directory_breaker_state",
			Help: "Circuit breaker state of the HTTP directory client",
		}, []string{"name"}),
	}
}

func (m *Metrics) ObserveCall(operation, outcome string, seconds float64) {
	m.CallDuration.WithLabelValues(operation, outcome).Observe(seconds)
}

func (m *Metrics) RecordCacheHit(operation string) {
	m.CacheHits.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordCacheMiss(operation string) {
	m.CacheMisses.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordInvalidations(source string, keys int) {
	m.Invalidations.WithLabelValues(source).Add(float64(keys))
}

func (m *Metrics) SetBreakerState(name string, state int) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}
