package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// ShipmentAssigned is published once the Dispatcher (or an external
// provider's createOrder) has bound the shipment to a carrier/shipper.
type ShipmentAssigned struct {
	ShipmentID uuid.UUID
	ProviderCode shipping.ProviderCode
	OccurredAt time.Time
}

func (ShipmentAssigned) EventType() string { return "shipment.assigned" }

// ShipmentUnassigned is published when the Dispatcher could not find an
// eligible in-house shipper for any leg.
type ShipmentUnassigned struct {
	ShipmentID uuid.UUID
	Reason     string
	OccurredAt time.Time
}

func (ShipmentUnassigned) EventType() string { return "shipment.unassigned" }

// ShipmentStatusChanged is published whenever the unified status field
// actually changes (i.e. the reconciliation rule applied the incoming
// status)
type ShipmentStatusChanged struct {
	ShipmentID uuid.UUID
	From       shipping.UnifiedStatus
	To         shipping.UnifiedStatus
	OccurredAt time.Time
}

func (ShipmentStatusChanged) EventType() string { return "shipment.status_changed" }
