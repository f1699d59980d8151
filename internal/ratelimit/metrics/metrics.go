package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected    *prometheus.CounterVec
	StoreErrors prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unitgate_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter, by endpoint class",
		}, []string{"class"}),
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unitgate_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed open because the bucket store errored",
		}),
	}
}

func (m *Metrics) IncrementRejected(class string) {
	m.Rejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	m.StoreErrors.Inc()
}
