package confirm

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command represents a partner's confirmation of a cash-on-delivery Order,
// moving it from pending_payment into confirmed.
type Command struct {
	OrderID uuid.UUID
	Actor   domain.Actor
}

// NewCommand creates a new Confirm command.
func NewCommand(orderID uuid.UUID, actor domain.Actor) Command {
	return Command{OrderID: orderID, Actor: actor}
}
