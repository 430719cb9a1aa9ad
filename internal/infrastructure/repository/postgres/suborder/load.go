package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/money"
	suborderv1 "github.com/shortlink-org/shop/oms/internal/domain/suborder/v1"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

// Load retrieves a sub-order by id, consulting the L1 cache first.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*suborderv1.SubOrder, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached, nil
	}

	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "suborder load requires an active transaction", nil)
	}

	row := tx.QueryRow(ctx, `
		SELECT id, order_id, shop_id, subtotal, shipping_total, discount_total, grand_total,
		       status, shipper_id, return_deadline, coin_reward, version
		FROM oms_suborders WHERE id = $1
	`, id)

	so, err := s.scan(ctx, row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "suborder", nil)
		}

		return nil, domain.MapInfraErr("load suborder", err)
	}

	s.cache.Set(id.String(), so, 1)

	return so, nil
}

// ListByOrder retrieves every sub-order fanned out from orderID.
func (s *Store) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*suborderv1.SubOrder, error) {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "suborder list requires an active transaction", nil)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, order_id, shop_id, subtotal, shipping_total, discount_total, grand_total,
		       status, shipper_id, return_deadline, coin_reward, version
		FROM oms_suborders WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, domain.MapInfraErr("list suborders by order", err)
	}
	defer rows.Close()

	var out []*suborderv1.SubOrder

	for rows.Next() {
		so, err := s.scan(ctx, rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan suborder", err)
		}

		out = append(out, so)
	}

	return out, rows.Err()
}

// ListByShop retrieves the paginated sub-orders belonging to a shop, used by
// the partner order surface.
func (s *Store) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*suborderv1.SubOrder, error) {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "suborder list requires an active transaction", nil)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, order_id, shop_id, subtotal, shipping_total, discount_total, grand_total,
		       status, shipper_id, return_deadline, coin_reward, version
		FROM oms_suborders WHERE shop_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3
	`, shopID, limit, offset)
	if err != nil {
		return nil, domain.MapInfraErr("list suborders by shop", err)
	}
	defer rows.Close()

	var out []*suborderv1.SubOrder

	for rows.Next() {
		so, err := s.scan(ctx, rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan suborder", err)
		}

		out = append(out, so)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(ctx context.Context, row rowScanner) (*suborderv1.SubOrder, error) {
	var (
		id, orderID, shopID                                uuid.UUID
		subtotal, shippingTotal, discountTotal, grandTotal decimal.Decimal
		status                                             string
		shipperID                                          *uuid.UUID
		returnDeadline                                      *time.Time
		coinReward                                         int64
		version                                            int
	)

	if err := row.Scan(
		&id, &orderID, &shopID, &subtotal, &shippingTotal, &discountTotal, &grandTotal,
		&status, &shipperID, &returnDeadline, &coinReward, &version,
	); err != nil {
		return nil, err
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	totals := money.Totals{Subtotal: subtotal, ShippingTotal: shippingTotal, DiscountTotal: discountTotal, GrandTotal: grandTotal}

	return suborderv1.Reconstitute(
		id, orderID, shopID, items, totals, suborderv1.SubOrderStatus(status),
		shipperID, returnDeadline, coinReward, version,
	), nil
}

func (s *Store) loadItems(ctx context.Context, subOrderID uuid.UUID) ([]suborderv1.Item, error) {
	tx := uow.FromContext(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, product_id, name, sku, unit_price, quantity, total_price, image_url
		FROM oms_suborder_items WHERE suborder_id = $1 ORDER BY id
	`, subOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []suborderv1.Item

	for rows.Next() {
		var item suborderv1.Item
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.SKU, &item.UnitPrice, &item.Quantity, &item.TotalPrice, &item.ImageURL); err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, rows.Err()
}
