package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher writes run lifecycle events to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka publisher for the given brokers and
// topic. Writes are acknowledged by all in-sync replicas and retried
// up to three times before failing.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// Publish sends one run event. Messages are keyed by run ID so every
// event of a run lands on the same partition, preserving order.
func (p *Publisher) Publish(ctx context.Context, event RunEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal run event",
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.RunID),
		Value: data,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish run event",
			zap.String("event_id", event.EventID),
			zap.String("kind", string(event.Kind)),
			zap.String("run_id", event.RunID),
			zap.Error(err))
		return fmt.Errorf("failed to publish run event: %w", err)
	}

	p.logger.Debug("published run event",
		zap.String("event_id", event.EventID),
		zap.String("kind", string(event.Kind)),
		zap.String("run_id", event.RunID))

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
