package cancel

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command represents a command to cancel an order.
type Command struct {
	OrderID uuid.UUID
	Actor   domain.Actor
}

// NewCommand creates a new Cancel command.
func NewCommand(orderID uuid.UUID, actor domain.Actor) Command {
	return Command{OrderID: orderID, Actor: actor}
}
