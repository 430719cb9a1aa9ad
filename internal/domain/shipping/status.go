// Package shipping defines the provider-agnostic shipping contract: the
// ShippingProvider capability interface, a closed code -> constructor
// registry, the unified status set, and the per-provider status mappers.
package shipping

// UnifiedStatus is the provider-agnostic shipment status set, with a
// fixed display string and a priority used by the webhook reconciliation
// rule.
type UnifiedStatus string

const (
	StatusCreated    UnifiedStatus = "created"
	StatusAssigned   UnifiedStatus = "assigned"
	StatusPickedUp   UnifiedStatus = "picked_up"
	StatusDelivering UnifiedStatus = "delivering"
	StatusDelivered  UnifiedStatus = "delivered"
	StatusFailed     UnifiedStatus = "failed"
	StatusReturning  UnifiedStatus = "returning"
	StatusReturned   UnifiedStatus = "returned"
	StatusCancelled  UnifiedStatus = "cancelled"
)

// priority is fixed: created=1 ... cancelled=9.
var priority = map[UnifiedStatus]int{
	StatusCreated:    1,
	StatusAssigned:   2,
	StatusPickedUp:   3,
	StatusDelivering: 4,
	StatusDelivered:  5,
	StatusFailed:     6,
	StatusReturning:  7,
	StatusReturned:   8,
	StatusCancelled:  9,
}

// Priority returns the fixed rank of s, or 0 for an invalid status.
func Priority(s UnifiedStatus) int { return priority[s] }

// IsTerminal: s ∈ {delivered, returned, cancelled}.
func IsTerminal(s UnifiedStatus) bool {
	return s == StatusDelivered || s == StatusReturned || s == StatusCancelled
}

// IsSuccess: s = delivered.
func IsSuccess(s UnifiedStatus) bool { return s == StatusDelivered }

// Valid reports whether s is one of the nine unified states.
func Valid(s UnifiedStatus) bool {
	_, ok := priority[s]
	return ok
}

// Reconcile applies the webhook-reconciliation rule: the new status wins
// only if its priority is >= the current one; otherwise the current status
// field is not downgraded (the caller still appends to history).
func Reconcile(current, incoming UnifiedStatus) (next UnifiedStatus, applied bool) {
	if Priority(incoming) >= Priority(current) {
		return incoming, true
	}

	return current, false
}
