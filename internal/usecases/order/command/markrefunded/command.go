package markrefunded

import "github.com/google/uuid"

// Command marks a cancelled, paid Order as refunded once the payment
// gateway confirms the refund transfer completed.
type Command struct {
	OrderID uuid.UUID
}

// NewCommand creates a new MarkRefunded command.
func NewCommand(orderID uuid.UUID) Command {
	return Command{OrderID: orderID}
}
