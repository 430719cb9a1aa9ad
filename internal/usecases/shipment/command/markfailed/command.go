package markfailed

import (
	"time"

	"github.com/google/uuid"
)

// Command records a delivery-failed observation against a Shipment.
type Command struct {
	ShipmentID uuid.UUID
	Reason     string
	At         time.Time
}
