package event

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Kafka record header names.
const (
	HeaderEventType = "event-type"
	HeaderEventID   = "event-id"
)

// KafkaPublisher forwards every event it receives to a Kafka topic.
// It subscribes to the bus as a wildcard handler. Records are keyed by
// aggregate id so the events of one item stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
	retries  int
	backoff  time.Duration
}

// NewSaramaConfig returns the producer configuration used for stock events.
func NewSaramaConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	return sc
}

// NewKafkaPublisher dials the brokers and returns a publisher for cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic, logger), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.Named("kafka"),
		retries:  3,
		backoff:  100 * time.Millisecond,
	}
}

// EventTypes is empty: the publisher receives all events.
func (p *KafkaPublisher) EventTypes() []string {
	return nil
}

// Handle sends the event, retrying with exponential backoff.
func (p *KafkaPublisher) Handle(ctx context.Context, e shared.DomainEvent) error {
	value, err := Encode(e)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.AggregateID().String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(e.EventType())},
			{Key: []byte(HeaderEventID), Value: []byte(e.EventID().String())},
		},
		Timestamp: e.OccurredAt(),
	}

	delay := p.backoff
	for attempt := 1; ; attempt++ {
		partition, offset, err := p.producer.SendMessage(msg)
		if err == nil {
			p.logger.Debug("event published",
				zap.String("event_type", e.EventType()),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
			)
			return nil
		}
		if attempt >= p.retries {
			return fmt.Errorf("publish %s after %d attempts: %w", e.EventType(), attempt, err)
		}
		p.logger.Warn("kafka send failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w", e.EventType(), ctx.Err())
		}
	}
}

// Close flushes and closes the producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)
