// Package metrics exposes conflict ledger metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Events      *prometheus.CounterVec // reported, resolved, rejected, directory_corrected
	Corrections *prometheus.CounterVec // applied, recorded, failed
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_conflict_events_total",
			Help: "Conflict report lifecycle events",
		}, []string{"event"}),
		Corrections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_conflict_corrections_total",
			Help: "Directory corrections requested on resolve, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordEvent(event string) {
	m.Events.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordCorrection(outcome string) {
	m.Corrections.WithLabelValues(outcome).Inc()
}
