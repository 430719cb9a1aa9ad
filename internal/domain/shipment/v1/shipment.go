package v1

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/events"
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// Timestamps holds the shipment lifecycle timestamps of the data model.
type Timestamps struct {
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
	LastWebhook *time.Time
}

// Shipment tracks one physical parcel end to end.
type Shipment struct {
	mu sync.Mutex

	id              uuid.UUID
	subOrderID      uuid.UUID
	trackingNumber  string
	providerCode    shipping.ProviderCode
	providerOrderID string
	status          shipping.UnifiedStatus
	pickup          vo.Address
	delivery        vo.Address
	pkg             shipping.Package
	codAmount       decimal.Decimal
	codCollected    bool
	legs            []Leg
	history         []HistoryEntry
	retryCount      int
	timestamps      Timestamps
	version         int

	domainEvents []events.Event
}

// New creates a Shipment in `created`.
func New(id, subOrderID uuid.UUID, providerCode shipping.ProviderCode, pickup, delivery vo.Address, pkg shipping.Package, codAmount decimal.Decimal) (*Shipment, error) {
	if codAmount.IsNegative() {
		return nil, domain.Wrap(domain.ErrValidation, "cod amount must be non-negative", nil)
	}

	s := &Shipment{
		id: id, subOrderID: subOrderID, providerCode: providerCode,
		status: shipping.StatusCreated, pickup: pickup, delivery: delivery,
		pkg: pkg, codAmount: codAmount, domainEvents: make([]events.Event, 0),
	}
	s.appendHistory(shipping.StatusCreated, "", "shipment created", nil, time.Now())

	return s, nil
}

// Reconstitute rebuilds a Shipment from persisted state.
func Reconstitute(
	id, subOrderID uuid.UUID, trackingNumber string, providerCode shipping.ProviderCode, providerOrderID string,
	status shipping.UnifiedStatus, pickup, delivery vo.Address, pkg shipping.Package, codAmount decimal.Decimal,
	codCollected bool, legs []Leg, history []HistoryEntry, retryCount int, ts Timestamps, version int,
) *Shipment {
	return &Shipment{
		id: id, subOrderID: subOrderID, trackingNumber: trackingNumber, providerCode: providerCode,
		providerOrderID: providerOrderID, status: status, pickup: pickup, delivery: delivery, pkg: pkg,
		codAmount: codAmount, codCollected: codCollected, legs: legs, history: history, retryCount: retryCount,
		timestamps: ts, version: version, domainEvents: make([]events.Event, 0),
	}
}

func (s *Shipment) ID() uuid.UUID                        { return s.id }
func (s *Shipment) SubOrderID() uuid.UUID                { return s.subOrderID }
func (s *Shipment) TrackingNumber() string               { return s.trackingNumber }
func (s *Shipment) ProviderCode() shipping.ProviderCode  { return s.providerCode }
func (s *Shipment) ProviderOrderID() string              { return s.providerOrderID }
func (s *Shipment) Pickup() vo.Address                   { return s.pickup }
func (s *Shipment) Delivery() vo.Address                 { return s.delivery }
func (s *Shipment) Package() shipping.Package             { return s.pkg }
func (s *Shipment) CODAmount() decimal.Decimal           { return s.codAmount }
func (s *Shipment) Version() int                         { return s.version }
func (s *Shipment) Timestamps() Timestamps               { return s.timestamps }
func (s *Shipment) RetryCount() int                      { return s.retryCount }

func (s *Shipment) Status() shipping.UnifiedStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *Shipment) CODCollected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.codCollected
}

func (s *Shipment) Legs() []Leg {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Leg(nil), s.legs...)
}

func (s *Shipment) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]HistoryEntry(nil), s.history...)
}

func (s *Shipment) DomainEvents() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]events.Event, len(s.domainEvents))
	copy(out, s.domainEvents)

	return out
}

func (s *Shipment) ClearDomainEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.domainEvents = s.domainEvents[:0]
}

func (s *Shipment) IncrementVersion() { s.mu.Lock(); s.version++; s.mu.Unlock() }

func (s *Shipment) appendHistory(status shipping.UnifiedStatus, providerStatus, message string, extra map[string]any, at time.Time) {
	s.history = append(s.history, HistoryEntry{Status: status, ProviderStatus: providerStatus, At: at, Message: message, Extra: extra})
}

// AssignLegs records the Dispatcher's plan and the provider order id for
// external providers; publishes ShipmentAssigned.
func (s *Shipment) AssignLegs(legs []Leg, providerOrderID, trackingNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shipping.IsTerminal(s.status) {
		return domain.Wrap(domain.ErrConflict, "shipment is terminal", nil)
	}

	s.legs = legs
	s.providerOrderID = providerOrderID
	s.trackingNumber = trackingNumber

	if s.status == shipping.StatusCreated {
		s.status = shipping.StatusAssigned
		s.appendHistory(shipping.StatusAssigned, "", "assigned", nil, time.Now())
	}

	s.domainEvents = append(s.domainEvents, ShipmentAssigned{ShipmentID: s.id, ProviderCode: s.providerCode, OccurredAt: time.Now()})

	return nil
}

// MarkUnassigned records a Dispatcher failure: no eligible
// shipper for any leg. The shipment remains `created` so an admin retry can
// re-dispatch; this is a Shipment-level notification, not a status demotion.
func (s *Shipment) MarkUnassigned(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.domainEvents = append(s.domainEvents, ShipmentUnassigned{ShipmentID: s.id, Reason: reason, OccurredAt: time.Now()})
}

// ApplyStatus reconciles an incoming unified status observation (internal
// dispatch event or webhook) against the current one's priority
// rule. The entry is always appended to history; the status field changes
// only when Reconcile says so, and never once the shipment is terminal
// (terminal-state invariant). Returns whether the status field moved.
func (s *Shipment) ApplyStatus(incoming shipping.UnifiedStatus, providerStatus, message string, extra map[string]any, at time.Time) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendHistory(incoming, providerStatus, message, extra, at)
	now := time.Now()
	s.timestamps.LastWebhook = &now

	if shipping.IsTerminal(s.status) {
		return false, nil
	}

	next, applied := shipping.Reconcile(s.status, incoming)
	if !applied || next == s.status {
		return false, nil
	}

	from := s.status
	s.status = next

	switch next {
	case shipping.StatusPickedUp:
		s.timestamps.PickedUpAt = &at
	case shipping.StatusDelivered:
		s.timestamps.DeliveredAt = &at
	case shipping.StatusCancelled:
		s.timestamps.CancelledAt = &at
	}

	s.domainEvents = append(s.domainEvents, ShipmentStatusChanged{ShipmentID: s.id, From: from, To: next, OccurredAt: now})

	return true, nil
}

// CollectCOD records COD collection; only permitted once the shipment is
// delivered (data model invariant: codCollected==true ⟹ status delivered).
func (s *Shipment) CollectCOD() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != shipping.StatusDelivered {
		return domain.Wrap(domain.ErrConflict, "cod can only be collected on a delivered shipment", nil)
	}

	s.codCollected = true

	return nil
}

// IncrementRetry increments the provider-call retry counter.
func (s *Shipment) IncrementRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retryCount++
}
