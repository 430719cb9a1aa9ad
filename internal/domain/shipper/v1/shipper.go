package v1

import (
	"sync"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
)

// Status is the shipper account lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

// Vehicle is the shipper's mode of transport, used by dispatch ranking in
// the original scope only insofar as it constrains reachable post offices;
// no ranking rule keys on it directly.
type Vehicle string

const (
	VehicleMotorbike Vehicle = "motorbike"
	VehicleCar       Vehicle = "car"
	VehicleTruck     Vehicle = "truck"
)

// Performance tracks the rolling counters used by dispatch ranking
// ("higher avg rating") and by reporting.
type Performance struct {
	CompletedDeliveries int
	FailedDeliveries    int
	AvgRating           float64
}

// Shipper is the in-house courier entity ranked and assigned by the
// Dispatcher. Online/available flags are mutated by the shipper client
// (heartbeat/app foreground state); assignment counters are mutated only by
// the Dispatcher under the atomic conditional increment
type Shipper struct {
	mu sync.Mutex

	id             uuid.UUID
	userID         uuid.UUID
	postOfficeID   uuid.UUID
	vehicle        Vehicle
	status         Status
	isOnline       bool
	isAvailable    bool
	currentLoc     location.Location
	lastHeartbeat  int64 // unix seconds, set by the caller
	pickupCount    int
	deliveryCount  int
	maxDailyOrders int
	performance    Performance
	version        int
}

// New creates a Shipper in `pending`.
func New(id, userID, postOfficeID uuid.UUID, vehicle Vehicle, maxDailyOrders int) (*Shipper, error) {
	if maxDailyOrders <= 0 {
		return nil, domain.Wrap(domain.ErrValidation, "maxDailyOrders must be positive", nil)
	}

	return &Shipper{
		id: id, userID: userID, postOfficeID: postOfficeID, vehicle: vehicle,
		status: StatusPending, maxDailyOrders: maxDailyOrders,
	}, nil
}

// Reconstitute rebuilds a Shipper from persisted state.
func Reconstitute(
	id, userID, postOfficeID uuid.UUID, vehicle Vehicle, status Status, isOnline, isAvailable bool,
	loc location.Location, lastHeartbeat int64, pickupCount, deliveryCount, maxDailyOrders int,
	perf Performance, version int,
) *Shipper {
	return &Shipper{
		id: id, userID: userID, postOfficeID: postOfficeID, vehicle: vehicle, status: status,
		isOnline: isOnline, isAvailable: isAvailable, currentLoc: loc, lastHeartbeat: lastHeartbeat,
		pickupCount: pickupCount, deliveryCount: deliveryCount, maxDailyOrders: maxDailyOrders,
		performance: perf, version: version,
	}
}

func (s *Shipper) ID() uuid.UUID               { return s.id }
func (s *Shipper) UserID() uuid.UUID           { return s.userID }
func (s *Shipper) PostOfficeID() uuid.UUID     { return s.postOfficeID }
func (s *Shipper) Vehicle() Vehicle            { return s.vehicle }
func (s *Shipper) MaxDailyOrders() int         { return s.maxDailyOrders }
func (s *Shipper) Version() int                { return s.version }
func (s *Shipper) Performance() Performance    { return s.performance }

func (s *Shipper) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *Shipper) IsOnline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isOnline
}

func (s *Shipper) IsAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isAvailable
}

func (s *Shipper) CurrentLocation() location.Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentLoc
}

func (s *Shipper) LastHeartbeat() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastHeartbeat
}

func (s *Shipper) PickupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pickupCount
}

func (s *Shipper) DeliveryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deliveryCount
}

// IsEligibleFor reports the non-counter part of the candidate-set filter:
// active, online, available, at the right office. The capacity
// cap itself is enforced by the persistence layer's atomic increment, not
// here, since that is the actual correctness boundary.
func (s *Shipper) IsEligibleFor(postOfficeID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status == StatusActive && s.isOnline && s.isAvailable && s.postOfficeID == postOfficeID
}

// HasCapacityFor is a pre-check mirroring the DB-level conditional increment
// invariant `currentPickupCount + currentDeliveryCount <= maxDailyOrders`
//; used for in-process ranking before the authoritative DB attempt.
func (s *Shipper) HasCapacityFor(kind LegCounterKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case CounterPickup:
		return s.pickupCount+s.deliveryCount < s.maxDailyOrders
	case CounterDelivery:
		return s.pickupCount+s.deliveryCount < s.maxDailyOrders
	default:
		return false
	}
}

// LegCounterKind picks which counter a dispatch candidate check/increment
// applies to.
type LegCounterKind string

const (
	CounterPickup   LegCounterKind = "pickup"
	CounterDelivery LegCounterKind = "delivery"
)

// SetOnline is mutated by the shipper client (heartbeat/app state), never by
// the Dispatcher.
func (s *Shipper) SetOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isOnline = online
}

// SetAvailable is mutated by the shipper client.
func (s *Shipper) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isAvailable = available
}

// UpdateHeartbeat records the last known location and heartbeat timestamp;
// called from the location pipeline on every GPS sample.
func (s *Shipper) UpdateHeartbeat(loc location.Location, atUnix int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentLoc = loc
	s.lastHeartbeat = atUnix
}

// IncrementCounter is an in-process mirror of the DB-level atomic increment.
// The Dispatcher does not call it: it assigns through ports.CapacityGate,
// whose conditional update is the authoritative `counter+1 <= cap` check.
func (s *Shipper) IncrementCounter(kind LegCounterKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pickupCount+s.deliveryCount >= s.maxDailyOrders {
		return domain.Wrap(domain.ErrNoShipperAvailable, "capacity cap reached", nil)
	}

	switch kind {
	case CounterPickup:
		s.pickupCount++
	case CounterDelivery:
		s.deliveryCount++
	}

	return nil
}

// ResetDailyCounters zeroes both assignment counters; called by the daily
// reset routine, which must be idempotent and tolerate partial
// failure (journal-then-update at the infrastructure layer).
func (s *Shipper) ResetDailyCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pickupCount = 0
	s.deliveryCount = 0
}

// RecordDelivery updates the rolling performance counters used by dispatch
// ranking ("higher avg rating").
func (s *Shipper) RecordDelivery(success bool, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if success {
		s.performance.CompletedDeliveries++
	} else {
		s.performance.FailedDeliveries++
	}

	total := s.performance.CompletedDeliveries + s.performance.FailedDeliveries
	if total > 0 {
		s.performance.AvgRating = (s.performance.AvgRating*float64(total-1) + rating) / float64(total)
	}
}

func (s *Shipper) IncrementVersion() { s.mu.Lock(); s.version++; s.mu.Unlock() }
