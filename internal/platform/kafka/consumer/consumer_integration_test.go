//go:build integration

package consumer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"unitgate/internal/platform/kafka/consumer"
	"unitgate/internal/platform/kafka/producer"
	"unitgate/pkg/testutil/containers"
)

type ConsumerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
	logger   *slog.Logger
}

func TestConsumerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ConsumerIntegrationSuite))
}

func (s *ConsumerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	prod, err := producer.New(producer.Config{Brokers: s.kafka.Brokers, Retries: 3, DeliveryTimeout: 10 * time.Second}, s.logger)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ConsumerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

type recorder struct {
	mu       sync.Mutex
	seen     []*consumer.Message
	failOnce map[string]bool
}

func (r *recorder) Handle(_ context.Context, msg *consumer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOnce[string(msg.Key)] {
		delete(r.failOnce, string(msg.Key))
		return errors.New("transient")
	}
	r.seen = append(r.seen, msg)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func (s *ConsumerIntegrationSuite) run(topic, group string, h consumer.Handler) (*consumer.Consumer, context.CancelFunc) {
	c, err := consumer.New(consumer.Config{
		Brokers:   s.kafka.Brokers,
		GroupID:   group,
		Topics:    []string{topic},
		FromStart: true,
	}, h, s.logger)
	s.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Run(ctx) }()
	return c, cancel
}

func (s *ConsumerIntegrationSuite) TestDeliversHeadersAndPayload() {
	ctx := context.Background()
	topic := "membership-events-" + uuid.NewString()
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	s.Require().NoError(s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("req-1"),
		Value:   []byte(`{"event":"membership_manager_approved"}`),
		Headers: map[string]string{"event_type": "membership_manager_approved"},
	}))

	rec := &recorder{}
	c, cancel := s.run(topic, "group-"+uuid.NewString(), rec)
	defer func() { cancel(); c.Close() }()

	s.Eventually(func() bool { return rec.count() == 1 }, 20*time.Second, 100*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	s.Equal("membership_manager_approved", rec.seen[0].Headers["event_type"])
	s.Equal("req-1", string(rec.seen[0].Key))
}

func (s *ConsumerIntegrationSuite) TestFailedHandlerIsRedeliveredToNextMember() {
	ctx := context.Background()
	topic := "membership-events-" + uuid.NewString()
	group := "group-" + uuid.NewString()
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))
	s.Require().NoError(s.producer.Produce(ctx, &producer.Message{Topic: topic, Key: []byte("req-2"), Value: []byte("{}")}))

	first := &recorder{failOnce: map[string]bool{"req-2": true}}
	c1, cancel1 := s.run(topic, group, first)
	time.Sleep(3 * time.Second)
	cancel1()
	c1.Close()
	s.Equal(0, first.count(), "failed record must not be committed")

	second := &recorder{}
	c2, cancel2 := s.run(topic, group, second)
	defer func() { cancel2(); c2.Close() }()
	s.Eventually(func() bool { return second.count() == 1 }, 20*time.Second, 100*time.Millisecond)
}
