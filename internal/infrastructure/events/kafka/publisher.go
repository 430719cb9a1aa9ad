// Package kafka implements ports.EventPublisher/EventSubscriber concerns
// over Watermill+Kafka, grounded on the delivery consumer's Sarama/Watermill
// wiring (same logger adapter, same subscriber config style).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	logger "github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// watermillLoggerAdapter adapts go-sdk logger to Watermill's logger
// interface.
type watermillLoggerAdapter struct {
	log logger.Logger
}

func (w *watermillLoggerAdapter) Error(msg string, err error, _ watermill.LogFields) {
	w.log.Error(fmt.Sprintf("%s: %v", msg, err), slog.String("error", err.Error()))
}

func (w *watermillLoggerAdapter) Info(msg string, _ watermill.LogFields)  { w.log.Info(msg) }
func (w *watermillLoggerAdapter) Debug(msg string, _ watermill.LogFields) { w.log.Debug(msg) }
func (w *watermillLoggerAdapter) Trace(msg string, _ watermill.LogFields) { w.log.Debug(msg) }
func (w *watermillLoggerAdapter) With(_ watermill.LogFields) watermill.LoggerAdapter { return w }

// Publisher implements ports.EventPublisher against Kafka, publish-after-
// commit: usecases call Publish only once their database transaction has
// committed.
type Publisher struct {
	pub *kafka.Publisher
	log logger.Logger
}

// New dials the configured Kafka brokers and wraps them as a
// ports.EventPublisher.
func New(brokers []string, log logger.Logger) (*Publisher, error) {
	wmLogger := &watermillLoggerAdapter{log: log}

	pub, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &Publisher{pub: pub, log: log}, nil
}

// Publish serializes event to JSON and publishes it to topic. At-least-once:
// consumers on the other side must be idempotent.
func (p *Publisher) Publish(_ context.Context, topic string, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("event_type", event.EventType())

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish event %s to %s: %w", event.EventType(), topic, err)
	}

	return nil
}

// Close releases the underlying Kafka client.
func (p *Publisher) Close() error { return p.pub.Close() }

var _ ports.EventPublisher = (*Publisher)(nil)
