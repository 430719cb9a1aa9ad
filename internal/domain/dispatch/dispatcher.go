// Package dispatch implements the Shipper Dispatcher domain service:
// post-office resolution, hub routing across regions, candidate ranking and
// bounded-retry atomic assignment. Ranking is a pure function over the
// roster; the atomic conditional increment behind ports.CapacityGate is the
// actual correctness boundary, with the per-shipment lock layered on top as
// a latency optimization.
package dispatch

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
	v1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// maxCandidateRetries bounds the tie-breaker retry depth:
// on an atomic-increment conflict, try up to this many further candidates.
const maxCandidateRetries = 3

// Request is the Dispatcher's input: a just-created Shipment's pickup and
// delivery legs.
type Request struct {
	ShipmentID  uuid.UUID
	PickupLoc   location.Location
	DeliveryLoc location.Location
}

// Plan is the routing+assignment result: the ordered legs with any in-house
// shipper bound to each.
type Plan struct {
	Legs []shipmentv1.Leg
}

// Dispatcher selects in-house shippers per leg, balancing load across post
// offices and honoring capacity caps.
type Dispatcher struct {
	offices  ports.PostOfficeRepository
	shippers ports.ShipperRepository
	gate     ports.CapacityGate
	// shipmentLocks serializes dispatch per shipment id: an in-process
	// optimization layered over the DB-level atomic increment, which is the
	// actual correctness boundary.
	shipmentLocks keyedMutex
}

// New creates a Dispatcher.
func New(offices ports.PostOfficeRepository, shippers ports.ShipperRepository, gate ports.CapacityGate) *Dispatcher {
	return &Dispatcher{offices: offices, shippers: shippers, gate: gate}
}

// Dispatch resolves the route and assigns an in-house shipper to every leg
// that needs one. On failure to find any eligible shipper for a leg, it
// returns domain.ErrNoShipperAvailable; the caller is
// responsible for marking the Shipment unassigned and publishing
// ShipmentUnassigned.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Plan, error) {
	unlock := d.shipmentLocks.Lock(req.ShipmentID)
	defer unlock()

	pickupOffice, err := d.offices.NearestLocal(ctx, req.PickupLoc)
	if err != nil {
		return Plan{}, domain.Wrap(domain.ErrNoShipperAvailable, "resolve pickup office", err)
	}

	deliveryOffice, err := d.offices.NearestLocal(ctx, req.DeliveryLoc)
	if err != nil {
		return Plan{}, domain.Wrap(domain.ErrNoShipperAvailable, "resolve delivery office", err)
	}

	legs, err := d.routeLegs(ctx, pickupOffice, deliveryOffice)
	if err != nil {
		return Plan{}, err
	}

	for i := range legs {
		shipperID, err := d.assignLeg(ctx, legs[i])
		if err != nil {
			return Plan{}, err
		}

		legs[i].AssignedShipper = &shipperID
	}

	return Plan{Legs: legs}, nil
}

// routeLegs builds the leg chain. Same-region shipments still have two
// legs, a pickup leg into the pickup office and a delivery leg out of the
// delivery office, so both counters are exercised; cross-region shipments
// route through each region's hub.
func (d *Dispatcher) routeLegs(ctx context.Context, pickup, delivery *v1.PostOffice) ([]shipmentv1.Leg, error) {
	if pickup.Region() == delivery.Region() {
		return []shipmentv1.Leg{
			{Kind: shipmentv1.LegPickup, FromOfficeID: pickup.ID(), ToOfficeID: delivery.ID()},
			{Kind: shipmentv1.LegDelivery, FromOfficeID: delivery.ID(), ToOfficeID: delivery.ID()},
		}, nil
	}

	pickupHub, err := d.offices.HubForRegion(ctx, pickup.Region())
	if err != nil {
		return nil, domain.Wrap(domain.ErrNoShipperAvailable, "resolve pickup hub", err)
	}

	deliveryHub, err := d.offices.HubForRegion(ctx, delivery.Region())
	if err != nil {
		return nil, domain.Wrap(domain.ErrNoShipperAvailable, "resolve delivery hub", err)
	}

	return []shipmentv1.Leg{
		{Kind: shipmentv1.LegPickup, FromOfficeID: pickup.ID(), ToOfficeID: pickupHub.ID()},
		{Kind: shipmentv1.LegPickup, FromOfficeID: pickupHub.ID(), ToOfficeID: deliveryHub.ID()},
		{Kind: shipmentv1.LegDelivery, FromOfficeID: deliveryHub.ID(), ToOfficeID: delivery.ID()},
		{Kind: shipmentv1.LegDelivery, FromOfficeID: delivery.ID(), ToOfficeID: delivery.ID()},
	}, nil
}

// counterKindFor maps a leg kind to the shipper counter it consumes.
func counterKindFor(kind shipmentv1.LegKind) v1.LegCounterKind {
	if kind == shipmentv1.LegDelivery {
		return v1.CounterDelivery
	}

	return v1.CounterPickup
}

// assignLeg ranks the candidate roster for leg.FromOfficeID and attempts the
// atomic conditional increment on each, in rank order, up to
// maxCandidateRetries beyond the first pick.
func (d *Dispatcher) assignLeg(ctx context.Context, leg shipmentv1.Leg) (uuid.UUID, error) {
	counter := counterKindFor(leg.Kind)

	candidates, err := d.shippers.CandidatesForOffice(ctx, leg.FromOfficeID)
	if err != nil {
		return uuid.Nil, domain.Wrap(domain.ErrNoShipperAvailable, "list candidates", err)
	}

	ranked := Rank(candidates, counter)
	if len(ranked) == 0 {
		return uuid.Nil, domain.Wrap(domain.ErrNoShipperAvailable, leg.FromOfficeID.String(), nil)
	}

	attempts := len(ranked)
	if attempts > maxCandidateRetries+1 {
		attempts = maxCandidateRetries + 1
	}

	for i := 0; i < attempts; i++ {
		candidate := ranked[i]

		ok, err := d.gate.TryIncrement(ctx, candidate.ID(), counter)
		if err != nil {
			return uuid.Nil, domain.Wrap(domain.ErrNoShipperAvailable, "increment counter", err)
		}

		if ok {
			return candidate.ID(), nil
		}
	}

	return uuid.Nil, domain.Wrap(domain.ErrNoShipperAvailable, leg.FromOfficeID.String(), nil)
}

// Rank orders candidates by the step 4 rule: fewer current assignments
// on the relevant counter, then higher avg rating, then most recent
// heartbeat, with shipper id as the final deterministic tie-break.
func Rank(candidates []*v1.Shipper, counter v1.LegCounterKind) []*v1.Shipper {
	ranked := make([]*v1.Shipper, 0, len(candidates))

	for _, c := range candidates {
		if c.HasCapacityFor(counter) {
			ranked = append(ranked, c)
		}
	}

	countOf := func(s *v1.Shipper) int {
		if counter == v1.CounterPickup {
			return s.PickupCount()
		}

		return s.DeliveryCount()
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if ca, cb := countOf(a), countOf(b); ca != cb {
			return ca < cb
		}

		if ra, rb := a.Performance().AvgRating, b.Performance().AvgRating; ra != rb {
			return ra > rb
		}

		if ha, hb := a.LastHeartbeat(), b.LastHeartbeat(); ha != hb {
			return ha > hb
		}

		return a.ID().String() < b.ID().String()
	})

	return ranked
}

// keyedMutex serializes operations per uuid key.
type keyedMutex struct {
	guard sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (k *keyedMutex) Lock(id uuid.UUID) (unlock func()) {
	k.guard.Lock()

	if k.locks == nil {
		k.locks = make(map[uuid.UUID]*sync.Mutex)
	}

	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}

	k.guard.Unlock()

	l.Lock()

	return l.Unlock
}
