package collectcod

import "github.com/google/uuid"

// Command records that the shipper collected the COD amount from the
// recipient upon delivery.
type Command struct {
	ShipmentID uuid.UUID
}
