// Package v1 implements the SubOrder aggregate: the per-shop slice of an
// Order and the unit of fulfillment. Same FSM-backed aggregate shape as
// internal/domain/order/v1.
package v1

// SubOrderStatus is the exhaustive fulfillment state space of a SubOrder.
type SubOrderStatus string

const (
	StatusPending          SubOrderStatus = "pending"
	StatusConfirmed        SubOrderStatus = "confirmed"
	StatusProcessing       SubOrderStatus = "processing"
	StatusReadyToShip      SubOrderStatus = "ready_to_ship"
	StatusShipping         SubOrderStatus = "shipping"
	StatusDelivered        SubOrderStatus = "delivered"
	StatusCompleted        SubOrderStatus = "completed"
	StatusCancelled        SubOrderStatus = "cancelled"
	StatusReturnRequested  SubOrderStatus = "return_requested"
	StatusReturnApproved   SubOrderStatus = "return_approved"
	StatusReturned         SubOrderStatus = "returned"
	StatusRefunded         SubOrderStatus = "refunded"
)

func (s SubOrderStatus) String() string { return string(s) }

// IsTerminal mirrors the Order notion: completed/cancelled/refunded admit no
// further transition (returned still moves on to refunded).
func (s SubOrderStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// transitions is the exhaustive table: any pair not listed here
// fails with InvalidStatusTransition.
var transitions = map[SubOrderStatus][]SubOrderStatus{
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusProcessing, StatusCancelled},
	StatusProcessing:      {StatusReadyToShip, StatusCancelled},
	StatusReadyToShip:     {StatusShipping},
	StatusShipping:        {StatusDelivered},
	StatusDelivered:       {StatusCompleted, StatusReturnRequested},
	StatusReturnRequested: {StatusReturnApproved, StatusCompleted},
	StatusReturnApproved:  {StatusReturned},
	StatusReturned:        {StatusRefunded},
}

func allowedNext(from, to SubOrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}
