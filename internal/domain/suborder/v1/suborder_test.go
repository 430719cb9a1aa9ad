package v1

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/money"
)

func newTestSubOrder(t *testing.T, shopID uuid.UUID, grand decimal.Decimal) *SubOrder {
	t.Helper()

	totals, err := money.NewTotals(grand, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	items := []Item{{ID: uuid.New(), ProductID: uuid.New(), Name: "widget", Quantity: 1, UnitPrice: grand, TotalPrice: grand}}

	so, err := NewSubOrder(uuid.New(), uuid.New(), shopID, items, totals)
	require.NoError(t, err)

	return so
}

func TestSubOrder_HappyPathToCompleted(t *testing.T) {
	shopID := uuid.New()
	partner := domain.Actor{Role: domain.RolePartner, ShopID: &shopID}
	so := newTestSubOrder(t, shopID, decimal.NewFromInt(350000))

	require.NoError(t, so.Confirm(partner))
	require.NoError(t, so.Process(partner))
	require.NoError(t, so.MarkReadyToShip(partner))

	system := domain.Actor{Role: domain.RoleSystem}
	require.NoError(t, so.MarkShipping(system))

	deliveredAt := time.Now()
	require.NoError(t, so.MarkDelivered(system, deliveredAt))
	require.Equal(t, StatusDelivered, so.Status())
	require.NotNil(t, so.ReturnDeadline())
	require.WithinDuration(t, deliveredAt.Add(7*24*time.Hour), *so.ReturnDeadline(), time.Second)

	customer := domain.Actor{Role: domain.RoleCustomer, ID: uuid.New()}
	ownerID := customer.ID
	require.NoError(t, so.ConfirmReceipt(customer, ownerID))
	require.Equal(t, StatusCompleted, so.Status())
	require.Equal(t, int64(500), so.CoinReward()) // 350000*0.01=3500, capped at 500
}

func TestSubOrder_RewardFormulaLowerBound(t *testing.T) {
	shopID := uuid.New()
	so := newTestSubOrder(t, shopID, decimal.NewFromInt(200))
	// jump directly to delivered for a formula-only test
	so = Reconstitute(so.ID(), so.OrderID(), so.ShopID(), so.Items(), so.Totals(), StatusDelivered, nil, nil, 0, so.Version())

	customer := domain.Actor{Role: domain.RoleCustomer, ID: uuid.New()}
	require.NoError(t, so.ConfirmReceipt(customer, customer.ID))
	require.Equal(t, int64(10), so.CoinReward()) // 200*0.01=2, floored to max(10,...)
}

func TestSubOrder_InvalidTransitionRejected(t *testing.T) {
	shopID := uuid.New()
	so := newTestSubOrder(t, shopID, decimal.NewFromInt(10000))

	partner := domain.Actor{Role: domain.RolePartner, ShopID: &shopID}
	err := so.MarkReadyToShip(partner)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestSubOrder_ForbiddenWrongShop(t *testing.T) {
	shopID := uuid.New()
	otherShop := uuid.New()
	so := newTestSubOrder(t, shopID, decimal.NewFromInt(10000))

	stranger := domain.Actor{Role: domain.RolePartner, ShopID: &otherShop}
	err := so.Confirm(stranger)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSubOrder_ReturnWindowClosed(t *testing.T) {
	shopID := uuid.New()
	so := newTestSubOrder(t, shopID, decimal.NewFromInt(10000))

	system := domain.Actor{Role: domain.RoleSystem}
	deliveredAt := time.Now().Add(-10 * 24 * time.Hour)
	so.status = StatusDelivered
	deadline := deliveredAt.Add(7 * 24 * time.Hour)
	so.returnDeadline = &deadline

	customer := domain.Actor{Role: domain.RoleCustomer, ID: uuid.New()}
	err := so.RequestReturn(customer, customer.ID, time.Now())
	require.ErrorIs(t, err, domain.ErrValidation)
	_ = system
}
