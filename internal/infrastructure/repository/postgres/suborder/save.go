package postgres

import (
	"context"
	"fmt"

	"github.com/shortlink-org/shop/oms/internal/domain"
	suborderv1 "github.com/shortlink-org/shop/oms/internal/domain/suborder/v1"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

// Save persists so with optimistic concurrency control (version column).
// Requires a transaction in context (see pkg/uow).
func (s *Store) Save(ctx context.Context, so *suborderv1.SubOrder) error {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return domain.Wrap(domain.ErrInternal, "suborder save requires an active transaction", nil)
	}

	totals := so.Totals()

	if so.Version() == 0 {
		_, err := tx.Exec(ctx, `
			INSERT INTO oms_suborders (
				id, order_id, shop_id, subtotal, shipping_total, discount_total, grand_total,
				status, shipper_id, return_deadline, coin_reward, version
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,1)
		`,
			so.ID(), so.OrderID(), so.ShopID(), totals.Subtotal, totals.ShippingTotal, totals.DiscountTotal, totals.GrandTotal,
			string(so.Status()), so.ShipperID(), so.ReturnDeadline(), so.CoinReward(),
		)
		if err != nil {
			return domain.MapInfraErr("insert suborder", err)
		}

		for _, item := range so.Items() {
			if _, err := tx.Exec(ctx, `
				INSERT INTO oms_suborder_items (id, suborder_id, product_id, name, sku, unit_price, quantity, total_price, image_url)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			`, item.ID, so.ID(), item.ProductID, item.Name, item.SKU, item.UnitPrice, item.Quantity, item.TotalPrice, item.ImageURL); err != nil {
				return domain.MapInfraErr("insert suborder item", err)
			}
		}

		so.IncrementVersion()
		s.cache.Del(so.ID().String())

		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE oms_suborders SET
			status = $1, shipper_id = $2, return_deadline = $3, coin_reward = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`,
		string(so.Status()), so.ShipperID(), so.ReturnDeadline(), so.CoinReward(), so.ID(), so.Version(),
	)
	if err != nil {
		return domain.MapInfraErr("update suborder", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: suborder", domain.ErrVersionConflict)
	}

	so.IncrementVersion()
	s.cache.Del(so.ID().String())

	return nil
}
