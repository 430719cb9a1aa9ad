package markshipping

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command moves a ready_to_ship SubOrder to shipping; driven by the
// shipment-status-changed event consumer (system actor) or a shipper app.
type Command struct {
	SubOrderID uuid.UUID
	Actor      domain.Actor
}

// NewCommand creates a new MarkShipping command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor) Command {
	return Command{SubOrderID: subOrderID, Actor: actor}
}
