package kafka

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Producer wraps a kafka.Writer bound to a single topic.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewProducer creates a topic producer.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{
		writer: writer,
		logger: logger.With("component", "kafka_producer", "topic", topic),
	}
}

// Publish writes the given messages to the topic.
func (p *Producer) Publish(ctx context.Context, messages ...kafka.Message) error {
	return p.writer.WriteMessages(ctx, messages...)
}

// Close flushes and releases the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
