// Package money holds the monetary value objects shared by Order and
// SubOrder: shopspring/decimal for every price field, with the totals
// invariant checked in one place instead of ad hoc per caller.
package money

import "github.com/shopspring/decimal"

// Totals holds the monetary breakdown enforced by the data model invariant:
// grandTotal = subtotal + shippingTotal - discountTotal, all non-negative.
type Totals struct {
	Subtotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
}

// NewTotals computes GrandTotal and validates the result against
// NewTotalsSpecification.
func NewTotals(subtotal, shippingTotal, discountTotal decimal.Decimal) (Totals, error) {
	totals := Totals{
		Subtotal:      subtotal,
		ShippingTotal: shippingTotal,
		DiscountTotal: discountTotal,
		GrandTotal:    subtotal.Add(shippingTotal).Sub(discountTotal),
	}

	if err := NewTotalsSpecification().IsSatisfiedBy(&totals); err != nil {
		return Totals{}, err
	}

	return totals, nil
}

// Valid reports whether the invariant still holds, e.g. after reconstitution
// from storage.
func (t Totals) Valid() bool {
	return NewTotalsSpecification().IsSatisfiedBy(&t) == nil
}
