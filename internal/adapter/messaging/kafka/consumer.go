package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler processes one fetched message. A handler error is logged but the
// message is still committed: delivery is at-most-once per tier and the
// failure model is log-and-drop, relying on the next record or tick.
type Handler func(ctx context.Context, msg kafka.Message) error

// Consumer wraps a kafka.Reader joined to a consumer group over one or
// more topics.
type Consumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewConsumer creates a group consumer over the given topics.
func NewConsumer(brokers []string, groupID string, topics []string, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10 << 20, // 10MB
		CommitInterval: 0,        // synchronous commits
		MaxWait:        2 * time.Second,
	})
	return &Consumer{
		reader: reader,
		logger: logger.With("component", "kafka_consumer", "group", groupID),
	}
}

// Run fetches messages until the context is cancelled, invoking handler for
// each. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}

		if err := handler(ctx, msg); err != nil {
			c.logger.Error("handler failed, message dropped",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("failed to commit offset", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
