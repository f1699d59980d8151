package producer

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

// ErrClosed is returned once Close has been called.
var ErrClosed = errors.New("producer is closed")

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

func (m *Message) record() *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(m.Headers))
	for k, v := range m.Headers {
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return &kgo.Record{
		Topic:   m.Topic,
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
	}
}

// Publisher is the subset of producer behavior the outbox worker and health checks need.
type Publisher interface {
	Produce(ctx context.Context, msg *Message) error
	Healthy(ctx context.Context) bool
	Close() error
}

// Producer wraps a franz-go client.
type Producer struct {
	client *kgo.Client
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

type Config struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

func New(cfg Config, logger *slog.Logger) (*Producer, error) {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	acks, allISR := kgo.AllISRAcks(), true
	switch cfg.Acks {
	case "0":
		acks, allISR = kgo.NoAck(), false
	case "1":
		acks, allISR = kgo.LeaderAck(), false
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.RequiredAcks(acks),
		kgo.RecordRetries(cfg.Retries),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.AllowAutoTopicCreation(),
	}
	if !allISR {
		// idempotent writes require acks=all
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	if cfg.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return &Producer{client: client, logger: logger}, nil
}

func (p *Producer) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Produce sends msg and waits for the broker acknowledgement.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if p.isClosed() {
		return ErrClosed
	}
	if err := p.client.ProduceSync(ctx, msg.record()).FirstErr(); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}
	return nil
}

// ProduceAsync buffers msg; delivery failures are only logged.
func (p *Producer) ProduceAsync(msg *Message) error {
	if p.isClosed() {
		return ErrClosed
	}
	p.client.Produce(context.Background(), msg.record(), func(r *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Error("kafka delivery failed",
				"topic", r.Topic,
				"partition", r.Partition,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records (bounded to 30s) and closes the client.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil && p.logger != nil {
		p.logger.Warn("kafka producer closed with unflushed messages", "error", err)
	}
	p.client.Close()
	return nil
}

func (p *Producer) Healthy(ctx context.Context) bool {
	if p.isClosed() {
		return false
	}
	return p.client.Ping(ctx) == nil
}

// NoopProducer discards messages. It stands in when Kafka is not configured.
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (NoopProducer) Produce(context.Context, *Message) error { return nil }
func (NoopProducer) Healthy(context.Context) bool            { return true }
func (NoopProducer) Close() error                            { return nil }
