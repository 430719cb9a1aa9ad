package v1

import (
	"time"

	"github.com/google/uuid"
)

// Domain events are plain structs implementing events.Event; they are
// serialized as JSON on the bus, so no generated message types are needed.

// OrderStatusChanged is published for every Order.status transition.
type OrderStatusChanged struct {
	OrderID    uuid.UUID
	From       OrderStatus
	To         OrderStatus
	OccurredAt time.Time
}

func (OrderStatusChanged) EventType() string { return "order.status_changed" }

// OrderCancelled is published when the customer cancels an order.
type OrderCancelled struct {
	OrderID       uuid.UUID
	RefundPending bool
	OccurredAt    time.Time
}

func (OrderCancelled) EventType() string { return "order.cancelled" }

// OrderCompleted is published exactly once, when the aggregate completion
// rule is satisfied.
type OrderCompleted struct {
	OrderID    uuid.UUID
	OccurredAt time.Time
}

func (OrderCompleted) EventType() string { return "order.completed" }
