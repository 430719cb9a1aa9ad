package markreadytoship

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Command moves a processing SubOrder to ready_to_ship. The usecase layer
// (not this command) is responsible for creating the Shipment afterward,
// either via the Dispatcher (in-house) or the Shipping Facade (external).
type Command struct {
	SubOrderID uuid.UUID
	Actor      domain.Actor
}

// NewCommand creates a new MarkReadyToShip command.
func NewCommand(subOrderID uuid.UUID, actor domain.Actor) Command {
	return Command{SubOrderID: subOrderID, Actor: actor}
}
