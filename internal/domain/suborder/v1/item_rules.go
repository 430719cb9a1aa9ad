package v1

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/go-sdk/specification"
)

var (
	ErrItemProductEmpty  = errors.New("item product id cannot be empty")
	ErrItemNameEmpty     = errors.New("item name cannot be empty")
	ErrItemQuantityZero  = errors.New("item quantity must be greater than zero")
	ErrItemPriceNegative = errors.New("item price must be non-negative")
	ErrItemTotalMismatch = errors.New("item total does not equal unit price times quantity")
)

// ProductNotEmptySpec validates that the product reference is set.
type ProductNotEmptySpec struct{}

func (s ProductNotEmptySpec) IsSatisfiedBy(item *Item) error {
	if item.ProductID == uuid.Nil {
		return ErrItemProductEmpty
	}

	return nil
}

// NameNotEmptySpec validates that the snapshotted name is set.
type NameNotEmptySpec struct{}

func (s NameNotEmptySpec) IsSatisfiedBy(item *Item) error {
	if item.Name == "" {
		return ErrItemNameEmpty
	}

	return nil
}

// QuantityPositiveSpec validates that quantity is greater than zero.
type QuantityPositiveSpec struct{}

func (s QuantityPositiveSpec) IsSatisfiedBy(item *Item) error {
	if item.Quantity <= 0 {
		return ErrItemQuantityZero
	}

	return nil
}

// PriceNonNegativeSpec validates that the unit price is not negative.
type PriceNonNegativeSpec struct{}

func (s PriceNonNegativeSpec) IsSatisfiedBy(item *Item) error {
	if item.UnitPrice.IsNegative() {
		return ErrItemPriceNegative
	}

	return nil
}

// TotalConsistentSpec validates totalPrice = unitPrice * quantity.
type TotalConsistentSpec struct{}

func (s TotalConsistentSpec) IsSatisfiedBy(item *Item) error {
	expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if !item.TotalPrice.Equal(expected) {
		return ErrItemTotalMismatch
	}

	return nil
}

// NewItemSpecification returns the composite specification every order item
// snapshot must satisfy.
func NewItemSpecification() specification.Specification[Item] {
	return specification.NewAndSpecification[Item](
		ProductNotEmptySpec{},
		NameNotEmptySpec{},
		QuantityPositiveSpec{},
		PriceNonNegativeSpec{},
		TotalConsistentSpec{},
	)
}
