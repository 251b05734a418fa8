package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// maxHandlerRetries bounds handler attempts before a message is committed
// and skipped.
const maxHandlerRetries = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, event *Event) error

// ConsumerConfig holds Kafka consumer configuration. When Topics is set the
// reader joins the group for all of them and Topic is ignored.
type ConsumerConfig struct {
	Brokers  []string `env:"BROKERS" envSeparator:","`
	GroupID  string   `env:"GROUP_ID" envDefault:"storefront"`
	Topic    string   `env:"-"`
	Topics   []string `env:"-"`
	MinBytes int      `env:"MIN_BYTES" envDefault:"1"`
	MaxBytes int      `env:"MAX_BYTES" envDefault:"10485760"`
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps the kafka-go reader for consuming events.
type Consumer struct {
	reader    messageReader
	group     string
	logger    *slog.Logger
	handler   Handler
	backoff   time.Duration
	closeOnce sync.Once
}

// NewConsumer creates a consumer group reader.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	rc := kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	}
	if len(cfg.Topics) > 0 {
		rc.GroupTopics = cfg.Topics
	} else {
		rc.Topic = cfg.Topic
	}

	return newConsumer(kafka.NewReader(rc), cfg.GroupID, handler, logger)
}

func newConsumer(r messageReader, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		group:   group,
		logger:  logger,
		handler: handler,
		backoff: 100 * time.Millisecond,
	}
}

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("group", c.group))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("group", c.group))
				return c.Close()
			}
			c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
			continue
		}

		if err := c.process(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return c.Close()
			}
			c.logger.Error("failed to commit message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles one message and commits it. Undecodable messages and
// messages whose handler fails every retry are committed too, so a poison
// message never blocks the partition.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	ConsumerMessagesReceived.WithLabelValues(msg.Topic, c.group).Inc()
	start := time.Now()
	defer func() {
		ConsumerProcessingDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	}()

	ctx = extractTrace(ctx, &msg)

	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		ConsumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
		c.logger.ErrorContext(ctx, "failed to unmarshal event",
			slog.String("topic", msg.Topic),
			slog.String("error", err.Error()),
		)
		return c.reader.CommitMessages(ctx, msg)
	}

	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			break
		}
		c.logger.WarnContext(ctx, "handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt < maxHandlerRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	if lastErr != nil {
		ConsumerMessagesFailed.WithLabelValues(msg.Topic, c.group).Inc()
		c.logger.ErrorContext(ctx, "handler failed after all retries, skipping message",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", lastErr.Error()),
		)
	} else {
		ConsumerMessagesProcessed.WithLabelValues(msg.Topic, c.group).Inc()
	}

	return c.reader.CommitMessages(ctx, msg)
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

// TopicPrefix is the prefix shared by all ecommerce topics.
const TopicPrefix = "ecommerce"

// Topic constructs a fully-qualified topic name.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
