package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/patent-radar/internal/application/lifecycle"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
)

const (
	schemaVersion = "1"
	sourceName    = "patent-radar"
)

// Config holds the kafka producer settings.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RequiredAcks string        `mapstructure:"required_acks"`
}

// writerPort abstracts kafka.Writer for tests.
type writerPort interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer routes domain events to their topic, wrapped in the shared
// envelope.  Messages are keyed by aggregate ID so one patent's events stay
// ordered within a partition.
type Producer struct {
	writer writerPort
	logger logging.Logger
}

// NewProducer constructs a Producer writing to the configured brokers.
func NewProducer(cfg Config, logger logging.Logger) *Producer {
	brokers := cfg.Brokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	acks := kafka.RequireAll
	if cfg.RequiredAcks == "one" {
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// Topics are created by ops tooling; auto-creation hides typos.
		AllowAutoTopicCreation: false,
	}
	return &Producer{writer: writer, logger: logger.Named("kafka")}
}

var _ lifecycle.EventPublisher = (*Producer)(nil)

// Publish wraps the event in an envelope and writes it to the topic derived
// from its type.
func (p *Producer) Publish(ctx context.Context, eventType string, event common.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal event payload")
	}

	envelope := Envelope{
		EventID:       event.EventID(),
		EventType:     eventType,
		Source:        sourceName,
		Timestamp:     event.OccurredAt(),
		SchemaVersion: schemaVersion,
		Payload:       payload,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	msg := kafka.Message{
		Topic: topicForEventType(eventType),
		Key:   []byte(event.AggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "schema_version", Value: []byte(schemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeEventPublishFailed, "failed to publish event")
	}
	return nil
}

// Close flushes and releases the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
