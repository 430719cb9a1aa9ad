package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewTotals_ComputesGrandTotal(t *testing.T) {
	totals, err := NewTotals(decimal.NewFromInt(300_000), decimal.NewFromInt(30_000), decimal.NewFromInt(20_000))
	require.NoError(t, err)
	require.True(t, totals.GrandTotal.Equal(decimal.NewFromInt(310_000)))
	require.True(t, totals.Valid())
}

func TestNewTotals_RejectsNegativeComponents(t *testing.T) {
	_, err := NewTotals(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero)
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, err = NewTotals(decimal.Zero, decimal.NewFromInt(-1), decimal.Zero)
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, err = NewTotals(decimal.Zero, decimal.Zero, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrNegativeAmount)

	// Discount exceeding subtotal+shipping drives the grand total negative.
	_, err = NewTotals(decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(20))
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestTotalsSpecification_DetectsTamperedGrandTotal(t *testing.T) {
	totals, err := NewTotals(decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.Zero)
	require.NoError(t, err)

	totals.GrandTotal = decimal.NewFromInt(999)

	require.False(t, totals.Valid())
	require.ErrorIs(t, NewTotalsSpecification().IsSatisfiedBy(&totals), ErrTotalsMismatch)
}
