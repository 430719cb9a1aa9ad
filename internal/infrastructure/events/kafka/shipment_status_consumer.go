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
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/cancelbypartner"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markdelivered"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markreturned"
	"github.com/shortlink-org/shop/oms/internal/usecases/suborder/command/markshipping"
)

const (
	// TopicShipmentStatusChanged is the domain event topic this consumer
	// subscribes to.
	TopicShipmentStatusChanged = "shipment.status_changed"

	// ConsumerGroupOMSSubOrderProjection drives the SubOrder state machine
	// off shipment status transitions.
	ConsumerGroupOMSSubOrderProjection = "oms-suborder-shipment-projection"
)

// shipmentStatusChangedEvent mirrors shipmentv1.ShipmentStatusChanged's JSON
// shape (the consumer only needs the fields it acts on).
type shipmentStatusChangedEvent struct {
	ShipmentID uuid.UUID              `json:"ShipmentID"`
	To         shipping.UnifiedStatus `json:"To"`
}

// markShippingHandler, markDeliveredHandler, markReturnedHandler and
// cancelByPartnerHandler are the narrow slices of the suborder command
// handlers this consumer drives; kept as interfaces so the consumer does
// not depend on the handlers' concrete logger/repo wiring.
type markShippingHandler interface {
	Handle(ctx context.Context, cmd markshipping.Command) error
}

type markDeliveredHandler interface {
	Handle(ctx context.Context, cmd markdelivered.Command) error
}

type markReturnedHandler interface {
	Handle(ctx context.Context, cmd markreturned.Command) error
}

type cancelByPartnerHandler interface {
	Handle(ctx context.Context, cmd cancelbypartner.Command) error
}

// ShipmentStatusConsumer subscribes to TopicShipmentStatusChanged and drives
// the SubOrder FSM accordingly,
// grounded on the delivery consumer's Sarama/Watermill subscriber wiring.
type ShipmentStatusConsumer struct {
	log        logger.Logger
	subscriber *kafka.Subscriber
	cancel     context.CancelFunc

	shipmentRepo   ports.ShipmentRepository
	markShipping   markShippingHandler
	markDelivered  markDeliveredHandler
	markReturned   markReturnedHandler
	cancelPartner  cancelByPartnerHandler
}

// NewShipmentStatusConsumer creates a new consumer over brokers.
func NewShipmentStatusConsumer(
	brokers []string,
	log logger.Logger,
	shipmentRepo ports.ShipmentRepository,
	markShipping markShippingHandler,
	markDelivered markDeliveredHandler,
	markReturned markReturnedHandler,
	cancelPartner cancelByPartnerHandler,
) (*ShipmentStatusConsumer, error) {
	wmLogger := &watermillLoggerAdapter{log: log}

	saramaConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       brokers,
			Unmarshaler:   kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaConfig,
			ConsumerGroup: ConsumerGroupOMSSubOrderProjection,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &ShipmentStatusConsumer{
		log: log, subscriber: subscriber,
		shipmentRepo: shipmentRepo, markShipping: markShipping, markDelivered: markDelivered,
		markReturned: markReturned, cancelPartner: cancelPartner,
	}, nil
}

// Start begins consuming in a goroutine.
func (c *ShipmentStatusConsumer) Start(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, TopicShipmentStatusChanged)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicShipmentStatusChanged, err)
	}

	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-messages:
				if msg == nil {
					continue
				}

				c.process(ctx, msg)
			}
		}
	}()

	c.log.Info("shipment status consumer started", slog.String("topic", TopicShipmentStatusChanged))

	return nil
}

func (c *ShipmentStatusConsumer) process(ctx context.Context, msg *message.Message) {
	var evt shipmentStatusChangedEvent

	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		c.log.Error("malformed shipment.status_changed payload", slog.Any("error", err))
		msg.Ack()

		return
	}

	sh, err := c.shipmentRepo.Load(ctx, evt.ShipmentID)
	if err != nil {
		c.log.Error("load shipment for status projection failed", slog.Any("error", err), slog.String("shipment_id", evt.ShipmentID.String()))
		msg.Nack()

		return
	}

	actor := domain.SystemActor
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var opErr error

	switch evt.To {
	case shipping.StatusPickedUp, shipping.StatusDelivering:
		opErr = c.markShipping.Handle(opCtx, markshipping.NewCommand(sh.SubOrderID(), actor))
	case shipping.StatusDelivered:
		opErr = c.markDelivered.Handle(opCtx, markdelivered.NewCommand(sh.SubOrderID(), actor, time.Now().UTC()))
	case shipping.StatusReturned:
		opErr = c.markReturned.Handle(opCtx, markreturned.NewCommand(sh.SubOrderID(), actor))
	case shipping.StatusCancelled, shipping.StatusFailed:
		opErr = c.cancelPartner.Handle(opCtx, cancelbypartner.NewCommand(sh.SubOrderID(), actor))
	default:
		// created/assigned/returning have no corresponding SubOrder transition.
	}

	// An invalid-transition error means a replay of an already-applied
	// status change; the projection is at-least-once, so this must not
	// cause endless redelivery.
	if opErr != nil && !errors.Is(opErr, domain.ErrInvalidStatusTransition) {
		c.log.Error("shipment status projection failed", slog.Any("error", opErr), slog.String("shipment_id", evt.ShipmentID.String()))
		msg.Nack()

		return
	}

	msg.Ack()
}

// Close releases the underlying Kafka client.
func (c *ShipmentStatusConsumer) Close() error {
	if c.cancel != nil {
		c.cancel()
	}

	return c.subscriber.Close()
}
