package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	logger "github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/command/applypaymentfailed"
	"github.com/shortlink-org/shop/oms/internal/usecases/order/command/applypaymentsucceeded"
)

const (
	// TopicPaymentSucceeded and TopicPaymentFailed are the payments-queue
	// topics this core consumes; the payment provider HTTP handlers
	// that produce them live outside the core.
	TopicPaymentSucceeded = "payment.succeeded"
	TopicPaymentFailed    = "payment.failed"

	// ConsumerGroupOMSPayments drives the payment-triggered Order
	// transitions
	ConsumerGroupOMSPayments = "oms-order-payment-projection"
)

// paymentEvent is the versioned payments-queue message shape.
type paymentEvent struct {
	Schema  string    `json:"schema"`
	OrderID uuid.UUID `json:"order_id"`
}

type applyPaymentSucceededHandler interface {
	Handle(ctx context.Context, cmd applypaymentsucceeded.Command) error
}

type applyPaymentFailedHandler interface {
	Handle(ctx context.Context, cmd applypaymentfailed.Command) error
}

// PaymentConsumer subscribes to the payments queue and applies
// PaymentSucceeded / PaymentFailed to the Order state machine.
type PaymentConsumer struct {
	log        logger.Logger
	subscriber *kafka.Subscriber
	cancel     context.CancelFunc

	succeeded applyPaymentSucceededHandler
	failed    applyPaymentFailedHandler
}

// NewPaymentConsumer creates a new consumer over brokers.
func NewPaymentConsumer(
	brokers []string,
	log logger.Logger,
	succeeded applyPaymentSucceededHandler,
	failed applyPaymentFailedHandler,
) (*PaymentConsumer, error) {
	wmLogger := &watermillLoggerAdapter{log: log}

	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
			ConsumerGroup: ConsumerGroupOMSPayments,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &PaymentConsumer{log: log, subscriber: subscriber, succeeded: succeeded, failed: failed}, nil
}

// Start begins consuming both payment topics in goroutines.
func (c *PaymentConsumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	for _, topic := range []string{TopicPaymentSucceeded, TopicPaymentFailed} {
		messages, err := c.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		go c.consume(ctx, topic, messages)
	}

	c.log.Info("payment consumer started")

	return nil
}

func (c *PaymentConsumer) consume(ctx context.Context, topic string, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-messages:
			if msg == nil {
				continue
			}

			c.process(ctx, topic, msg)
		}
	}
}

func (c *PaymentConsumer) process(ctx context.Context, topic string, msg *message.Message) {
	var evt paymentEvent

	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		c.log.Error("malformed payment event payload", slog.String("topic", topic), slog.Any("error", err))
		msg.Ack()

		return
	}

	opCtx, cancelOp := context.WithTimeout(ctx, 10*time.Second)
	defer cancelOp()

	var err error

	switch topic {
	case TopicPaymentSucceeded:
		err = c.succeeded.Handle(opCtx, applypaymentsucceeded.NewCommand(evt.OrderID))
	case TopicPaymentFailed:
		err = c.failed.Handle(opCtx, applypaymentfailed.NewCommand(evt.OrderID))
	}

	// A replayed event hits an already-applied transition; the projection
	// is at-least-once, so that must not redeliver forever.
	if err != nil && !errors.Is(err, domain.ErrInvalidStatusTransition) {
		c.log.Error("payment projection failed", slog.String("order_id", evt.OrderID.String()), slog.Any("error", err))
		msg.Nack()

		return
	}

	msg.Ack()
}

// Close releases the underlying Kafka client.
func (c *PaymentConsumer) Close() error {
	if c.cancel != nil {
		c.cancel()
	}

	return c.subscriber.Close()
}
