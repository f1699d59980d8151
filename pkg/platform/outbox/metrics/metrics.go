package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
}

// New registers the outbox metrics with the default registry. Call it once per process.
func New() *Metrics {
	return &Metrics{
		PendingDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "unitgate_outbox_pending_total",
			Help: "Current number of unpublished outbox entries",
		}),
		PublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unitgate_outbox_published_total",
			Help: "Outbox entries published to Kafka",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unitgate_outbox_publish_failures_total",
			Help: "Outbox fetch or publish failures",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unitgate_outbox_publish_duration_seconds",
			Help:    "Time taken to publish one outbox entry",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unitgate_outbox_batch_size",
			Help:    "Entries fetched per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) {
	m.PendingDepth.Set(float64(count))
}

func (m *Metrics) IncPublished() {
	m.PublishedTotal.Inc()
}

func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) ObservePublishDuration(seconds float64) {
	m.PublishDuration.Observe(seconds)
}

func (m *Metrics) ObserveBatchSize(size int) {
	m.BatchSize.Observe(float64(size))
}
