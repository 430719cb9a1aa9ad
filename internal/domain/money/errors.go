package money

import "errors"

// ErrNegativeAmount is raised when a monetary field would go negative.
var ErrNegativeAmount = errors.New("amount must be non-negative")

// ErrTotalsMismatch is raised when grandTotal does not equal
// subtotal + shippingTotal - discountTotal.
var ErrTotalsMismatch = errors.New("grand total does not match its parts")
