// Package metrics exposes membership lifecycle metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Transitions   *prometheus.CounterVec // by event
	Verdicts      *prometheus.CounterVec // fresh, unchanged, edited, suppressed
	FastPaths     *prometheus.CounterVec // by policy
	Compensations *prometheus.CounterVec // ok, failed
	Conflicts     *prometheus.CounterVec // lost races and ordering errors, by operation
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_membership_transitions_total",
			Help: "Membership request lifecycle events",
		}, []string{"event"}),
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_membership_match_verdicts_total",
			Help: "Reconciliation verdicts for submitted claims",
		}, []string{"verdict"}),
		FastPaths: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_membership_fast_paths_total",
			Help: "Unchanged claims that skipped the owner gate",
		}, []string{"policy"}),
		Compensations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_membership_compensations_total",
			Help: "Directory writes undone after a failed approval",
		}, []string{"outcome"}),
		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_membership_conflicts_total",
			Help: "Rejected transitions caused by stale state or queue order",
		}, []string{"operation"}),
	}
}

func (m *Metrics) RecordTransition(event string) {
	m.Transitions.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordVerdict(verdict string) {
	m.Verdicts.WithLabelValues(verdict).Inc()
}

func (m *Metrics) RecordFastPath(policy string) {
	m.FastPaths.WithLabelValues(policy).Inc()
}

func (m *Metrics) RecordCompensation(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.Compensations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordConflict(operation string) {
	m.Conflicts.WithLabelValues(operation).Inc()
}
