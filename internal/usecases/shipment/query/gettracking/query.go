package gettracking

import "github.com/google/uuid"

// Query asks for the current tracking snapshot of a Shipment, fetched
// through the Facade.
type Query struct {
	ShipmentID uuid.UUID
}
