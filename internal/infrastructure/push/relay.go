package push

import (
	"context"

	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
	"github.com/shortlink-org/shop/oms/internal/infrastructure/events"
)

func envelope(event string, payload any) ports.PushEnvelope {
	return ports.PushEnvelope{Event: event, Payload: payload}
}

// RegisterRelays subscribes the hub to the in-process event stream so
// status changes reach live websocket clients without a Kafka round-trip:
// order status under the order id key, shipment status under the shipment
// id key, per the envelope names.
func RegisterRelays(pub *events.InMemoryPublisher, hub *Hub) {
	events.SubscribeTyped(pub, func(ctx context.Context, event orderv1.OrderStatusChanged) error {
		hub.Broadcast(ctx, event.OrderID.String(), envelope("order:status", event))

		return nil
	})

	events.SubscribeTyped(pub, func(ctx context.Context, event orderv1.OrderCompleted) error {
		hub.Broadcast(ctx, event.OrderID.String(), envelope("order:status", event))

		return nil
	})

	events.SubscribeTyped(pub, func(ctx context.Context, event shipmentv1.ShipmentStatusChanged) error {
		hub.Broadcast(ctx, event.ShipmentID.String(), envelope("shipment:status", event))

		return nil
	})

	events.SubscribeTyped(pub, func(ctx context.Context, event shipmentv1.ShipmentAssigned) error {
		hub.Broadcast(ctx, event.ShipmentID.String(), envelope("shipment:status", event))

		return nil
	})
}
