// Package v1 implements the Shipment aggregate: physical-parcel tracking,
// legs, append-only status history, and the COD/terminal-state invariants
// Same mutex-guarded, event-list aggregate shape as order/v1 and
// suborder/v1, but status transitions are priority-reconciled rather than a
// strict table, so a plain field + Reconcile() is used instead of go-sdk/fsm
// here.
package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// HistoryEntry is one append-only tracking record.
type HistoryEntry struct {
	Status         shipping.UnifiedStatus
	ProviderStatus string
	At             time.Time
	Message        string
	Extra          map[string]any
}

// LegKind distinguishes pickup-leg from delivery-leg dispatch.
type LegKind string

const (
	LegPickup   LegKind = "pickup"
	LegDelivery LegKind = "delivery"
)

// Leg is one physical movement of the parcel between two post offices (or
// between a customer/shop and a post office).
type Leg struct {
	Kind            LegKind
	FromOfficeID    uuid.UUID
	ToOfficeID      uuid.UUID
	AssignedShipper *uuid.UUID
}
