package postgres

import (
	"context"
	"fmt"

	"github.com/shortlink-org/shop/oms/internal/domain"
	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

// Save persists o with optimistic concurrency control (version column).
// Requires a transaction in context (see pkg/uow).
func (s *Store) Save(ctx context.Context, o *orderv1.Order) error {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return domain.Wrap(domain.ErrInternal, "order save requires an active transaction", nil)
	}

	ts := o.Timestamps()
	shipping := o.Shipping()
	totals := o.Totals()

	if o.Version() == 0 {
		_, err := tx.Exec(ctx, `
			INSERT INTO oms_orders (
				id, order_number, user_id, subtotal, shipping_total, discount_total, grand_total,
				payment_method, payment_status, status,
				ship_name, ship_phone, ship_street, ship_city, ship_district, ship_lat, ship_lng,
				created_at, updated_at, paid_at, completed_at, cancelled_at, version
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,1)
		`,
			o.ID(), o.OrderNumber(), o.UserID(), totals.Subtotal, totals.ShippingTotal, totals.DiscountTotal, totals.GrandTotal,
			string(o.PaymentMethod()), string(o.PaymentStatus()), string(o.Status()),
			shipping.Name(), shipping.Phone(), shipping.Street(), shipping.City(), shipping.District(),
			shipping.Location().Latitude(), shipping.Location().Longitude(),
			ts.CreatedAt, ts.UpdatedAt, ts.PaidAt, ts.CompletedAt, ts.CancelledAt,
		)
		if err != nil {
			return domain.MapInfraErr("insert order", err)
		}

		o.IncrementVersion()

		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE oms_orders SET
			payment_status = $1, status = $2, updated_at = $3, paid_at = $4,
			completed_at = $5, cancelled_at = $6, version = version + 1
		WHERE id = $7 AND version = $8
	`,
		string(o.PaymentStatus()), string(o.Status()), ts.UpdatedAt, ts.PaidAt,
		ts.CompletedAt, ts.CancelledAt, o.ID(), o.Version(),
	)
	if err != nil {
		return domain.MapInfraErr("update order", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", domain.ErrVersionConflict)
	}

	o.IncrementVersion()
	s.cache.Del(o.ID().String())

	return nil
}
