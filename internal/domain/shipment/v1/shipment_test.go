package v1

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

func newTestShipment(t *testing.T, cod decimal.Decimal) *Shipment {
	t.Helper()

	pickup, err := vo.NewAddress("Shop A", "0911111111", "1 Ly Thuong Kiet", "HCMC", "District 3", location.Location{})
	require.NoError(t, err)

	delivery, err := vo.NewAddress("Nguyen Van A", "0900000000", "123 Le Loi", "HCMC", "District 1", location.Location{})
	require.NoError(t, err)

	pkg := shipping.Package{WeightGrams: 500, ValueVND: decimal.NewFromInt(200000)}

	s, err := New(uuid.New(), uuid.New(), shipping.ProviderGHTK, pickup, delivery, pkg, cod)
	require.NoError(t, err)

	return s
}

func TestShipment_NewStartsCreatedWithHistory(t *testing.T) {
	s := newTestShipment(t, decimal.Zero)

	require.Equal(t, shipping.StatusCreated, s.Status())
	require.Len(t, s.History(), 1)
}

func TestShipment_AssignLegsMovesToAssigned(t *testing.T) {
	s := newTestShipment(t, decimal.Zero)

	legs := []Leg{{Kind: LegPickup, FromOfficeID: uuid.New(), ToOfficeID: uuid.New()}}
	require.NoError(t, s.AssignLegs(legs, "PRV-1", "TRACK-1"))

	require.Equal(t, shipping.StatusAssigned, s.Status())
	require.Equal(t, "TRACK-1", s.TrackingNumber())

	events := s.DomainEvents()
	require.Len(t, events, 1)
	require.Equal(t, "shipment.assigned", events[0].EventType())
}

func TestShipment_ApplyStatusIgnoresLowerPriority(t *testing.T) {
	s := newTestShipment(t, decimal.Zero)

	applied, err := s.ApplyStatus(shipping.StatusDelivering, "out_for_delivery", "", nil, time.Now())
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = s.ApplyStatus(shipping.StatusPickedUp, "picked_up_late", "", nil, time.Now())
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, shipping.StatusDelivering, s.Status())

	require.Len(t, s.History(), 3)
}

func TestShipment_ApplyStatusTerminalIsSticky(t *testing.T) {
	s := newTestShipment(t, decimal.Zero)

	_, err := s.ApplyStatus(shipping.StatusCancelled, "cancelled", "", nil, time.Now())
	require.NoError(t, err)
	require.True(t, shipping.IsTerminal(s.Status()))

	applied, err := s.ApplyStatus(shipping.StatusDelivered, "delivered", "", nil, time.Now())
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, shipping.StatusCancelled, s.Status())
}

func TestShipment_CollectCODRequiresDelivered(t *testing.T) {
	s := newTestShipment(t, decimal.NewFromInt(300000))

	err := s.CollectCOD()
	require.Error(t, err)

	_, err = s.ApplyStatus(shipping.StatusDelivered, "delivered", "", nil, time.Now())
	require.NoError(t, err)

	require.NoError(t, s.CollectCOD())
	require.True(t, s.CODCollected())
}

func TestShipment_NegativeCODRejected(t *testing.T) {
	pickup, _ := vo.NewAddress("Shop A", "0911111111", "1 Ly Thuong Kiet", "HCMC", "District 3", location.Location{})
	delivery, _ := vo.NewAddress("Nguyen Van A", "0900000000", "123 Le Loi", "HCMC", "District 1", location.Location{})
	pkg := shipping.Package{WeightGrams: 500, ValueVND: decimal.NewFromInt(200000)}

	_, err := New(uuid.New(), uuid.New(), shipping.ProviderGHTK, pickup, delivery, pkg, decimal.NewFromInt(-1))
	require.Error(t, err)
}
