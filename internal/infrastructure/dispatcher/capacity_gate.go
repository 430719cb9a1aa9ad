// Package dispatcher implements ports.CapacityGate, the atomic conditional
// increment that is the actual correctness boundary of the capacity
// invariant, layered under the Dispatcher's in-process per-shipment lock.
package dispatcher

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink-org/go-sdk/db"

	"github.com/shortlink-org/shop/oms/internal/domain"
	shipperv1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
)

// CapacityGate implements ports.CapacityGate against the oms_shippers table.
type CapacityGate struct {
	pool *pgxpool.Pool
}

// New wires a CapacityGate off the same pool the shipper repository uses.
func New(store db.DB) (*CapacityGate, error) {
	pool, ok := store.GetConn().(*pgxpool.Pool)
	if !ok {
		return nil, db.ErrGetConnection
	}

	return NewWithPool(pool), nil
}

// NewWithPool wraps an already-acquired pool (integration tests, tooling).
func NewWithPool(pool *pgxpool.Pool) *CapacityGate {
	return &CapacityGate{pool: pool}
}

// TryIncrement bumps shipperID's counter for kind by one, succeeding only if
// the combined counters stay within max_daily_orders. This single UPDATE is
// what prevents double-assignment under concurrent dispatch; the
// Dispatcher's keyed mutex is a latency optimization on top of it.
func (g *CapacityGate) TryIncrement(ctx context.Context, shipperID uuid.UUID, kind shipperv1.LegCounterKind) (bool, error) {
	var column string

	switch kind {
	case shipperv1.CounterPickup:
		column = "current_pickup_count"
	case shipperv1.CounterDelivery:
		column = "current_delivery_count"
	default:
		return false, domain.Wrap(domain.ErrValidation, "unknown leg counter kind", nil)
	}

	sql := `UPDATE oms_shippers SET ` + column + ` = ` + column + ` + 1, version = version + 1
		WHERE id = $1 AND current_pickup_count + current_delivery_count < max_daily_orders`

	tag, err := g.pool.Exec(ctx, sql, shipperID)
	if err != nil {
		return false, domain.MapInfraErr("try increment shipper capacity", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ResetDaily zeroes both counters for every shipper at postOfficeID. Plain
// UPDATE, idempotent by construction: resetting an already-zeroed counter to
// zero is a no-op.
func (g *CapacityGate) ResetDaily(ctx context.Context, postOfficeID uuid.UUID) error {
	_, err := g.pool.Exec(ctx, `
		UPDATE oms_shippers SET current_pickup_count = 0, current_delivery_count = 0, version = version + 1
		WHERE post_office_id = $1`, postOfficeID)
	if err != nil {
		return domain.MapInfraErr("reset daily shipper counters", err)
	}

	return nil
}
