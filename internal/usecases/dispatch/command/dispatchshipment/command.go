package dispatchshipment

import "github.com/google/uuid"

// Command asks the Dispatcher to resolve a route and assign in-house
// shippers to a just-created Shipment.
type Command struct {
	ShipmentID uuid.UUID
}

// NewCommand creates a new DispatchShipment command.
func NewCommand(shipmentID uuid.UUID) Command {
	return Command{ShipmentID: shipmentID}
}
