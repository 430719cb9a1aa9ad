package applypaymentsucceeded

import "github.com/google/uuid"

// Command represents the payment gateway's "payment succeeded" callback
// applied to an Order.
type Command struct {
	OrderID uuid.UUID
}

// NewCommand creates a new ApplyPaymentSucceeded command.
func NewCommand(orderID uuid.UUID) Command {
	return Command{OrderID: orderID}
}
