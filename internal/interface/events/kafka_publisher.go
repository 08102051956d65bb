package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"traveldesk-service/internal/domain/repository"
	"traveldesk-service/pkg/logger"
)

// envelope is the wire shape of every lifecycle event on the records
// topic.
type envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// KafkaPublisher writes record lifecycle events to a single topic. A
// nil *KafkaPublisher is valid and drops every event, so deployments
// without a broker need no special casing.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger logger.Logger
}

// NewKafkaPublisher builds the shared writer. Empty brokers disables
// event publishing.
func NewKafkaPublisher(brokers []string, topic string, log logger.Logger) *KafkaPublisher {
	if len(brokers) == 0 {
		log.Info("Kafka not configured, lifecycle events disabled")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &KafkaPublisher{writer: writer, logger: log}
}

// Publish writes one event keyed by record id. Failures are returned
// for the caller to log; events are best-effort by contract.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, key string, payload interface{}) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}

	p.logger.Debug("Event published", "type", eventType, "key", key)
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

var _ repository.EventPublisher = (*KafkaPublisher)(nil)
