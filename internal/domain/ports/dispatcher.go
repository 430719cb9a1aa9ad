package ports

import (
	"context"

	"github.com/google/uuid"

	shipperv1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
)

// CapacityGate is the actual correctness boundary: an atomic
// conditional increment (`UPDATE ... WHERE counter+1 <= cap`) on a single
// shipper's leg counter. The in-process per-shipment lock used by the
// Dispatcher is an optimization layered on top of this; this is what
// prevents double-assignment under concurrent dispatch.
type CapacityGate interface {
	// TryIncrement attempts to bump the counter for kind on shipperID by one,
	// succeeding only if the result does not exceed maxDailyOrders. Returns
	// false (no error) on a failed conditional update (capacity reached or a
	// concurrent winner), which the Dispatcher treats as "try next candidate".
	TryIncrement(ctx context.Context, shipperID uuid.UUID, kind shipperv1.LegCounterKind) (ok bool, err error)
	// ResetDaily zeroes both counters for every shipper at a post office,
	// idempotently. Safe to call more than once for the
	// same cut-over.
	ResetDaily(ctx context.Context, postOfficeID uuid.UUID) error
}
