package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// Handler processes one decoded event envelope.  Returning an error leaves
// the offset uncommitted so the message is redelivered.
type Handler func(ctx context.Context, envelope Envelope) error

// ConsumerConfig holds the kafka consumer settings.
type ConsumerConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	GroupID        string        `mapstructure:"group_id"`
	Topics         []string      `mapstructure:"topics"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
	CommitInterval time.Duration `mapstructure:"commit_interval"`
}

// Consumer reads event envelopes from the bus and dispatches them to a
// handler.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
	logger  logging.Logger
}

// NewConsumer constructs a Consumer in the given consumer group.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger logging.Logger) *Consumer {
	brokers := cfg.Brokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "patent-radar"
	}
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = []string{TopicPatentIngested, TopicPatentStatusChanged, TopicPatentFeeDue}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = 10 << 20
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       maxBytes,
		CommitInterval: cfg.CommitInterval,
	})
	return &Consumer{reader: reader, handler: handler, logger: logger.Named("kafka_consumer")}
}

// Run consumes until the context is cancelled.  Handler failures are logged
// and the message is retried on the next delivery; undecodable messages are
// committed so they cannot wedge the partition.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, io.EOF) {
				return nil
			}
			return appErrors.Wrap(err, appErrors.ErrCodeEventPublishFailed, "failed to fetch message")
		}

		var envelope Envelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			c.logger.Warn("skipping undecodable message",
				logging.String("topic", msg.Topic), logging.Err(err))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return appErrors.Wrap(err, appErrors.ErrCodeEventPublishFailed, "failed to commit message")
			}
			continue
		}

		if err := c.handler(ctx, envelope); err != nil {
			c.logger.Error("event handler failed",
				logging.String("event_type", envelope.EventType),
				logging.String("event_id", envelope.EventID),
				logging.Err(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeEventPublishFailed, "failed to commit message")
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
