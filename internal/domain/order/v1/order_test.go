package v1

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/money"
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
)

func newTestOrder(t *testing.T, method PaymentMethod, grand decimal.Decimal) *Order {
	t.Helper()

	totals, err := money.NewTotals(grand, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	addr, err := vo.NewAddress("Nguyen Van A", "0900000000", "123 Le Loi", "HCMC", "District 1", location.Location{})
	require.NoError(t, err)

	o, err := NewOrder(uuid.New(), uuid.New(), "ORD-1", totals, method, addr)
	require.NoError(t, err)

	return o
}

func TestOrder_CODConfirmBypassesPayment(t *testing.T) {
	o := newTestOrder(t, PaymentMethodCOD, decimal.NewFromInt(350000))

	partner := domain.Actor{Role: domain.RolePartner}
	require.NoError(t, o.Confirm(partner))
	require.Equal(t, StatusConfirmed, o.Status())
}

func TestOrder_PaymentSucceeded(t *testing.T) {
	o := newTestOrder(t, PaymentMethodMomo, decimal.NewFromInt(100000))

	require.NoError(t, o.ApplyPaymentSucceeded())
	require.Equal(t, StatusProcessing, o.Status())
	require.Equal(t, PaymentPaid, o.PaymentStatus())
}

func TestOrder_PaymentFailedReleasesToTerminal(t *testing.T) {
	o := newTestOrder(t, PaymentMethodVNPay, decimal.NewFromInt(100000))

	require.NoError(t, o.ApplyPaymentFailed())
	require.Equal(t, StatusPaymentFailed, o.Status())
	require.True(t, o.Status().IsTerminal())
}

func TestOrder_CancelNotAllowedFromProcessing(t *testing.T) {
	o := newTestOrder(t, PaymentMethodMomo, decimal.NewFromInt(100000))
	require.NoError(t, o.ApplyPaymentSucceeded())

	customer := domain.Actor{Role: domain.RoleCustomer, ID: o.UserID()}
	_, err := o.Cancel(customer)
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestOrder_CancelPaidNonCODRequestsRefund(t *testing.T) {
	o := newTestOrder(t, PaymentMethodCOD, decimal.NewFromInt(350000))
	partner := domain.Actor{Role: domain.RolePartner}
	require.NoError(t, o.Confirm(partner))

	// Simulate a paid (non-COD) confirmed order by reconstituting with paid status.
	paid := Reconstitute(o.ID(), o.UserID(), o.OrderNumber(), o.Totals(), PaymentMethodMomo,
		PaymentPaid, StatusConfirmed, o.Shipping(), o.Timestamps(), o.Version())

	customer := domain.Actor{Role: domain.RoleCustomer, ID: paid.UserID()}
	refund, err := paid.Cancel(customer)
	require.NoError(t, err)
	require.True(t, refund)
	require.Equal(t, StatusCancelled, paid.Status())
}

func TestOrder_CompletePublishesOrderCompletedOnce(t *testing.T) {
	o := newTestOrder(t, PaymentMethodMomo, decimal.NewFromInt(500000))
	require.NoError(t, o.ApplyPaymentSucceeded())
	require.NoError(t, o.Complete())

	events := o.DomainEvents()
	count := 0

	for _, e := range events {
		if _, ok := e.(OrderCompleted); ok {
			count++
		}
	}

	require.Equal(t, 1, count)
	require.Equal(t, StatusCompleted, o.Status())
}

func TestOrder_ForbiddenActorCannotCancel(t *testing.T) {
	o := newTestOrder(t, PaymentMethodCOD, decimal.NewFromInt(100000))

	stranger := domain.Actor{Role: domain.RoleCustomer, ID: uuid.New()}
	_, err := o.Cancel(stranger)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
