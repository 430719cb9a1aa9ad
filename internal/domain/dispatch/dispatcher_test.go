package dispatch

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
	v1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
)

func newCandidate(t *testing.T, officeID uuid.UUID, pickupCount, deliveryCount, maxDaily int, rating float64, heartbeat int64) *v1.Shipper {
	t.Helper()

	s := v1.Reconstitute(
		uuid.New(), uuid.New(), officeID, v1.VehicleMotorbike, v1.StatusActive, true, true,
		location.Location{}, heartbeat, pickupCount, deliveryCount, maxDaily,
		v1.Performance{AvgRating: rating}, 0,
	)

	return s
}

func TestRank_PrefersFewerAssignmentsThenHigherRating(t *testing.T) {
	office := uuid.New()

	busy := newCandidate(t, office, 3, 0, 10, 4.9, 100)
	idle := newCandidate(t, office, 0, 0, 10, 4.0, 100)

	ranked := Rank([]*v1.Shipper{busy, idle}, v1.CounterPickup)

	require.Len(t, ranked, 2)
	require.Equal(t, idle.ID(), ranked[0].ID())
}

func TestRank_TieBreaksOnHeartbeatWhenCountAndRatingEqual(t *testing.T) {
	office := uuid.New()

	stale := newCandidate(t, office, 0, 0, 10, 4.5, 100)
	fresh := newCandidate(t, office, 0, 0, 10, 4.5, 200)

	ranked := Rank([]*v1.Shipper{stale, fresh}, v1.CounterPickup)

	require.Equal(t, fresh.ID(), ranked[0].ID())
}

func TestRank_ExcludesShippersAtCapacity(t *testing.T) {
	office := uuid.New()

	full := newCandidate(t, office, 10, 0, 10, 5.0, 100)
	ranked := Rank([]*v1.Shipper{full}, v1.CounterPickup)

	require.Empty(t, ranked)
}

// fakeOffices/fakeShippers/fakeGate below back an end-to-end Dispatch test
// with an in-memory roster instead of a real repository adapter.

type fakeOffices struct {
	byID map[uuid.UUID]*v1.PostOffice
	hubs map[location.Region]*v1.PostOffice
}

func (f *fakeOffices) Load(_ context.Context, id uuid.UUID) (*v1.PostOffice, error) {
	return f.byID[id], nil
}

func (f *fakeOffices) NearestLocal(_ context.Context, _ location.Location) (*v1.PostOffice, error) {
	for _, o := range f.byID {
		if !o.IsHub() {
			return o, nil
		}
	}

	return nil, nil
}

func (f *fakeOffices) HubForRegion(_ context.Context, region location.Region) (*v1.PostOffice, error) {
	return f.hubs[region], nil
}

func (f *fakeOffices) ListAll(_ context.Context) ([]*v1.PostOffice, error) {
	out := make([]*v1.PostOffice, 0, len(f.byID))
	for _, o := range f.byID {
		out = append(out, o)
	}

	return out, nil
}

type fakeShippers struct {
	byOffice map[uuid.UUID][]*v1.Shipper
}

func (f *fakeShippers) Load(_ context.Context, id uuid.UUID) (*v1.Shipper, error) {
	for _, list := range f.byOffice {
		for _, s := range list {
			if s.ID() == id {
				return s, nil
			}
		}
	}

	return nil, nil
}

func (f *fakeShippers) Save(_ context.Context, _ *v1.Shipper) error { return nil }

func (f *fakeShippers) CandidatesForOffice(_ context.Context, officeID uuid.UUID) ([]*v1.Shipper, error) {
	return f.byOffice[officeID], nil
}

func (f *fakeShippers) ListByOffice(ctx context.Context, officeID uuid.UUID) ([]*v1.Shipper, error) {
	return f.CandidatesForOffice(ctx, officeID)
}

type fakeGate struct {
	denyFirst map[uuid.UUID]bool
	kinds     []v1.LegCounterKind
}

func (g *fakeGate) TryIncrement(_ context.Context, shipperID uuid.UUID, kind v1.LegCounterKind) (bool, error) {
	if g.denyFirst[shipperID] {
		g.denyFirst[shipperID] = false

		return false, nil
	}

	g.kinds = append(g.kinds, kind)

	return true, nil
}

func (g *fakeGate) ResetDaily(_ context.Context, _ uuid.UUID) error { return nil }

func TestDispatcher_DispatchAssignsSingleRegionDirect(t *testing.T) {
	officeID := uuid.New()
	office, err := v1.NewPostOffice(officeID, "HCM-01", v1.OfficeLocal, "HCMC", "District 1", location.RegionSouth, location.Location{}, nil)
	require.NoError(t, err)

	candidate := newCandidate(t, officeID, 0, 0, 10, 4.8, 100)

	gate := &fakeGate{denyFirst: map[uuid.UUID]bool{}}

	d := New(
		&fakeOffices{byID: map[uuid.UUID]*v1.PostOffice{officeID: office}},
		&fakeShippers{byOffice: map[uuid.UUID][]*v1.Shipper{officeID: {candidate}}},
		gate,
	)

	plan, err := d.Dispatch(context.Background(), Request{ShipmentID: uuid.New()})
	require.NoError(t, err)

	// A same-region shipment still has a pickup leg and a delivery leg; the
	// same shipper may carry both.
	require.Len(t, plan.Legs, 2)
	require.Equal(t, shipmentv1.LegPickup, plan.Legs[0].Kind)
	require.Equal(t, shipmentv1.LegDelivery, plan.Legs[1].Kind)

	for _, leg := range plan.Legs {
		require.NotNil(t, leg.AssignedShipper)
		require.Equal(t, candidate.ID(), *leg.AssignedShipper)
	}

	require.Equal(t, []v1.LegCounterKind{v1.CounterPickup, v1.CounterDelivery}, gate.kinds)
}

func TestDispatcher_DispatchRetriesNextCandidateOnGateConflict(t *testing.T) {
	officeID := uuid.New()
	office, err := v1.NewPostOffice(officeID, "HCM-01", v1.OfficeLocal, "HCMC", "District 1", location.RegionSouth, location.Location{}, nil)
	require.NoError(t, err)

	winner := newCandidate(t, officeID, 0, 0, 10, 4.0, 100)
	loser := newCandidate(t, officeID, 0, 0, 10, 4.9, 100)

	d := New(
		&fakeOffices{byID: map[uuid.UUID]*v1.PostOffice{officeID: office}},
		&fakeShippers{byOffice: map[uuid.UUID][]*v1.Shipper{officeID: {winner, loser}}},
		&fakeGate{denyFirst: map[uuid.UUID]bool{loser.ID(): true}},
	)

	plan, err := d.Dispatch(context.Background(), Request{ShipmentID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, winner.ID(), *plan.Legs[0].AssignedShipper)
}

func TestDispatcher_DispatchFailsWhenNoCandidates(t *testing.T) {
	officeID := uuid.New()
	office, err := v1.NewPostOffice(officeID, "HCM-01", v1.OfficeLocal, "HCMC", "District 1", location.RegionSouth, location.Location{}, nil)
	require.NoError(t, err)

	d := New(
		&fakeOffices{byID: map[uuid.UUID]*v1.PostOffice{officeID: office}},
		&fakeShippers{byOffice: map[uuid.UUID][]*v1.Shipper{}},
		&fakeGate{denyFirst: map[uuid.UUID]bool{}},
	)

	_, err = d.Dispatch(context.Background(), Request{ShipmentID: uuid.New()})
	require.Error(t, err)
}
