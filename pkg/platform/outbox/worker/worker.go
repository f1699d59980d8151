package worker

import (
	"context"
	"log/slog"
	"time"

	"unitgate/internal/platform/kafka/producer"
	"unitgate/pkg/platform/outbox"
	"unitgate/pkg/platform/outbox/metrics"
)

// Worker polls the outbox and publishes pending entries. Delivery is
// at-least-once: an entry published but not marked is published again.
type Worker struct {
	store        outbox.Store
	publisher    producer.Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
	retention    time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Worker)

func WithTopic(topic string) Option {
	return func(w *Worker) {
		w.topic = topic
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithRetention deletes published entries older than d on each poll. Zero keeps them.
func WithRetention(d time.Duration) Option {
	return func(w *Worker) {
		w.retention = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func New(store outbox.Store, publisher producer.Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		publisher:    publisher,
		topic:        "unitgate.membership.events",
		batchSize:    100,
		pollInterval: 200 * time.Millisecond,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled, then drains what is left with a short
// deadline so a clean shutdown does not strand events.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			for w.PollOnce(drainCtx) > 0 {
			}
			return nil
		case <-ticker.C:
			w.PollOnce(ctx)
		}
	}
}

// PollOnce publishes one batch and returns how many entries were marked processed.
func (w *Worker) PollOnce(ctx context.Context) int {
	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to fetch outbox entries", "error", err)
		w.incFailures()
		return 0
	}
	if w.metrics != nil && len(entries) > 0 {
		w.metrics.ObserveBatchSize(len(entries))
	}

	published := 0
	for _, entry := range entries {
		if err := w.publish(ctx, entry); err != nil {
			w.logger.ErrorContext(ctx, "failed to publish outbox entry",
				"id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			w.incFailures()
			continue
		}
		if err := w.store.MarkProcessed(ctx, entry.ID, w.now()); err != nil {
			w.logger.ErrorContext(ctx, "failed to mark outbox entry processed",
				"id", entry.ID,
				"error", err,
			)
			continue
		}
		published++
		if w.metrics != nil {
			w.metrics.IncPublished()
		}
	}

	w.housekeeping(ctx)
	return published
}

func (w *Worker) publish(ctx context.Context, entry *outbox.Entry) error {
	start := time.Now()
	err := w.publisher.Produce(ctx, &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.AggregateID),
		Value: entry.Payload,
		Headers: map[string]string{
			"entry_id":       entry.ID.String(),
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	})
	if err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.ObservePublishDuration(time.Since(start).Seconds())
	}
	return nil
}

func (w *Worker) housekeeping(ctx context.Context) {
	if w.metrics != nil {
		if n, err := w.store.CountPending(ctx); err == nil {
			w.metrics.SetPendingDepth(n)
		}
	}
	if w.retention > 0 {
		if _, err := w.store.DeleteProcessedBefore(ctx, w.now().Add(-w.retention)); err != nil {
			w.logger.WarnContext(ctx, "failed to prune outbox", "error", err)
		}
	}
}

func (w *Worker) incFailures() {
	if w.metrics != nil {
		w.metrics.IncPublishFailures()
	}
}
