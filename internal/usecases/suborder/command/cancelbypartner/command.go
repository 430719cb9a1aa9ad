package cancelbypartner

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command cancels a SubOrder that the owning shop has not yet shipped.
type Command struct {
	SubOrderID uuid.UUID
	Actor      domain.Actor
}

// NewCommand creates a new CancelByPartner command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor) Command {
	return Command{SubOrderID: subOrderID, Actor: actor}
}
