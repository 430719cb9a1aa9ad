package confirmreceipt

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command lets the customer confirm receipt of a delivered SubOrder,
// completing it and crediting the coin reward.
type Command struct {
	SubOrderID  uuid.UUID
	Actor       domain.Actor
	OwnerUserID uuid.UUID
}

// NewCommand creates a new ConfirmReceipt command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor, ownerUserID uuid.UUID) Command {
	return Command{SubOrderID: subOrderID, Actor: actor, OwnerUserID: ownerUserID}
}
