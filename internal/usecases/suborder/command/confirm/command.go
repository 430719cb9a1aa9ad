package confirm

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command moves a pending SubOrder to confirmed.
type Command struct {
	SubOrderID uuid.UUID
	Actor      domain.Actor
}

// NewCommand creates a new Confirm command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor) Command {
	return Command{SubOrderID: subOrderID, Actor: actor}
}
