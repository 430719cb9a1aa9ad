package v1

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain/money"
)

func validItem() Item {
	return Item{
		ID:         uuid.New(),
		ProductID:  uuid.New(),
		Name:       "widget",
		SKU:        "W-1",
		UnitPrice:  decimal.NewFromInt(50_000),
		Quantity:   2,
		TotalPrice: decimal.NewFromInt(100_000),
	}
}

func TestItemSpecification_ValidItemPasses(t *testing.T) {
	item := validItem()

	require.NoError(t, NewItemSpecification().IsSatisfiedBy(&item))
}

func TestItemSpecification_RejectsInvalidFields(t *testing.T) {
	spec := NewItemSpecification()

	item := validItem()
	item.ProductID = uuid.Nil
	require.ErrorIs(t, spec.IsSatisfiedBy(&item), ErrItemProductEmpty)

	item = validItem()
	item.Name = ""
	require.ErrorIs(t, spec.IsSatisfiedBy(&item), ErrItemNameEmpty)

	item = validItem()
	item.Quantity = 0
	require.ErrorIs(t, spec.IsSatisfiedBy(&item), ErrItemQuantityZero)

	item = validItem()
	item.UnitPrice = decimal.NewFromInt(-1)
	require.ErrorIs(t, spec.IsSatisfiedBy(&item), ErrItemPriceNegative)

	item = validItem()
	item.TotalPrice = decimal.NewFromInt(1)
	require.ErrorIs(t, spec.IsSatisfiedBy(&item), ErrItemTotalMismatch)
}

func TestNewSubOrder_RejectsItemFailingSpecification(t *testing.T) {
	totals, err := money.NewTotals(decimal.NewFromInt(100_000), decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	bad := validItem()
	bad.Quantity = 0

	_, err = NewSubOrder(uuid.New(), uuid.New(), uuid.New(), []Item{bad}, totals)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrItemQuantityZero)
}
