package cancel

import (
	"time"

	"github.com/google/uuid"
)

// Command cancels a non-terminal Shipment. For an external provider the
// carrier is asked to cancel the booking first; in-house shipments are
// cancelled locally only.
type Command struct {
	ShipmentID uuid.UUID
	ShopID     uuid.UUID
	Reason     string
	At         time.Time
}
