package markpickedup

import (
	"time"

	"github.com/google/uuid"
)

// Command records an internal pickup observation (in-house shipper action,
// as opposed to a carrier webhook) against a Shipment.
type Command struct {
	ShipmentID uuid.UUID
	Message    string
	At         time.Time
}
