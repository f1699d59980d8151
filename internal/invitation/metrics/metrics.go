// Package metrics exposes invitation gateway metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Events   *prometheus.CounterVec // by event
	Rejected *prometheus.CounterVec // expired, already_used, by entry point
	Joins    *prometheus.CounterVec // single, selection
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_invitation_events_total",
			Help: "Invite link, family invitation and occupancy events",
		}, []string{"event"}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_invitation_rejected_total",
			Help: "Invitations refused because they expired or were already used",
		}, []string{"kind", "reason"}),
		Joins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_invitation_manager_phone_joins_total",
			Help: "Manager phone lookups by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordEvent(event string) {
	m.Events.WithLabelValues(event).Inc()
}

func (m *Metrics) RecordRejected(kind, reason string) {
	m.Rejected.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) RecordJoin(outcome string) {
	m.Joins.WithLabelValues(outcome).Inc()
}
