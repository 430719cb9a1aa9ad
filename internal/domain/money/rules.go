package money

import "github.com/shortlink-org/go-sdk/specification"

// Totals validation is expressed as composable specifications so the
// individual invariants stay independently testable and reusable. The specs
// live in this package, next to the type they constrain, to keep the
// composite callable from the constructor without an import cycle.

// SubtotalNonNegativeSpec validates that the subtotal is not negative.
type SubtotalNonNegativeSpec struct{}

func (s SubtotalNonNegativeSpec) IsSatisfiedBy(t *Totals) error {
	if t.Subtotal.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// ShippingNonNegativeSpec validates that the shipping total is not negative.
type ShippingNonNegativeSpec struct{}

func (s ShippingNonNegativeSpec) IsSatisfiedBy(t *Totals) error {
	if t.ShippingTotal.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// DiscountNonNegativeSpec validates that the discount total is not negative.
type DiscountNonNegativeSpec struct{}

func (s DiscountNonNegativeSpec) IsSatisfiedBy(t *Totals) error {
	if t.DiscountTotal.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// GrandTotalConsistentSpec validates that grandTotal equals
// subtotal + shippingTotal - discountTotal and is not negative.
type GrandTotalConsistentSpec struct{}

func (s GrandTotalConsistentSpec) IsSatisfiedBy(t *Totals) error {
	if t.GrandTotal.IsNegative() {
		return ErrNegativeAmount
	}

	if !t.Subtotal.Add(t.ShippingTotal).Sub(t.DiscountTotal).Equal(t.GrandTotal) {
		return ErrTotalsMismatch
	}

	return nil
}

// NewTotalsSpecification returns the composite specification every Totals
// value must satisfy.
func NewTotalsSpecification() specification.Specification[Totals] {
	return specification.NewAndSpecification[Totals](
		SubtotalNonNegativeSpec{},
		ShippingNonNegativeSpec{},
		DiscountNonNegativeSpec{},
		GrandTotalConsistentSpec{},
	)
}
