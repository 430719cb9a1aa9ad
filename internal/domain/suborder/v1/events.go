package v1

import (
	"time"

	"github.com/google/uuid"
)

// SubOrderStatusChanged is published for every SubOrder.status transition.
type SubOrderStatusChanged struct {
	SubOrderID uuid.UUID
	OrderID    uuid.UUID
	From       SubOrderStatus
	To         SubOrderStatus
	OccurredAt time.Time
}

func (SubOrderStatusChanged) EventType() string { return "suborder.status_changed" }

// SubOrderCompleted is published when a SubOrder reaches completed, carrying
// the coin reward recorded for the receipt confirmation.
type SubOrderCompleted struct {
	SubOrderID uuid.UUID
	OrderID    uuid.UUID
	CoinReward int64
	OccurredAt time.Time
}

func (SubOrderCompleted) EventType() string { return "suborder.completed" }

// SubOrderPaymentConfirmed is appended for every SubOrder of an Order whose
// payment just succeeded.
// SubOrders are created already in `pending` by the checkout fan-out, so
// this carries no status transition of its own; it only feeds the tracking
// history alongside the Order-level ApplyPaymentSucceeded transition.
type SubOrderPaymentConfirmed struct {
	SubOrderID uuid.UUID
	OrderID    uuid.UUID
	OccurredAt time.Time
}

func (SubOrderPaymentConfirmed) EventType() string { return "suborder.payment_confirmed" }
