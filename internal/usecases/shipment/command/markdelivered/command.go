package markdelivered

import (
	"time"

	"github.com/google/uuid"
)

// Command records a delivered observation against a Shipment. Distinct from
// suborder/command/markdelivered, which moves the owning SubOrder itself to
// delivered once an event consumer reacts to shipment.status_changed.
type Command struct {
	ShipmentID uuid.UUID
	Message    string
	At         time.Time
}
