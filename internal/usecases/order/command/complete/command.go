package complete

import "github.com/google/uuid"

// Command represents the system-driven transition to Completed once every
// SubOrder under an Order has reached a terminal success state.
type Command struct {
	OrderID uuid.UUID
}

// NewCommand creates a new Complete command.
func NewCommand(orderID uuid.UUID) Command {
	return Command{OrderID: orderID}
}
