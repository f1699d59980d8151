package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes consumed messages. Returning an error leaves the offset
// uncommitted so the record is redelivered after a rebalance or restart.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

type Config struct {
	Brokers string
	GroupID string
	Topics  []string
	// FromStart consumes from the earliest offset when the group has none committed.
	FromStart bool
}

// Consumer is a franz-go consumer group member with manual, per-record commits.
type Consumer struct {
	client  *kgo.Client
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

func New(cfg Config, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer group ID not configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, fmt.Errorf("kafka consumer topics not configured")
	}

	reset := kgo.NewOffset().AtEnd()
	if cfg.FromStart {
		reset = kgo.NewOffset().AtStart()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ConsumeResetOffset(reset),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	return &Consumer{client: client, handler: handler, logger: logger}, nil
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.handleRecord(ctx, r)
		})
	}
}

func (c *Consumer) handleRecord(ctx context.Context, r *kgo.Record) {
	headers := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		headers[h.Key] = string(h.Value)
	}
	msg := &Message{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Key:       r.Key,
		Value:     r.Value,
		Headers:   headers,
		Timestamp: r.Timestamp,
	}

	if err := c.handler.Handle(ctx, msg); err != nil {
		c.logger.Error("failed to handle message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	if err := c.client.CommitRecords(ctx, r); err != nil {
		c.logger.Error("failed to commit offset",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
	}
}

// Close leaves the group and closes the client. Safe to call twice.
func (c *Consumer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.client.Close()
}
