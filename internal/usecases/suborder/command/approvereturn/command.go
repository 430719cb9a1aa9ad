package approvereturn

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command records the partner's decision on a requested return.
type Command struct {
	SubOrderID uuid.UUID
	Actor      domain.Actor
	Approve    bool
}

// NewCommand creates a new ApproveReturn command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor, approve bool) Command {
	return Command{SubOrderID: subOrderID, Actor: actor, Approve: approve}
}
