package process

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command moves a confirmed SubOrder to processing (partner begins packing).
type Command struct {
	SubOrderID uuid.UUID
	Actor      domain.Actor
}

// NewCommand creates a new Process command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor) Command {
	return Command{SubOrderID: subOrderID, Actor: actor}
}
