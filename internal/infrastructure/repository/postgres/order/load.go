package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/money"
	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

// Load retrieves an order by id, consulting the L1 cache first.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*orderv1.Order, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached, nil
	}

	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "order load requires an active transaction", nil)
	}

	row := tx.QueryRow(ctx, `
		SELECT id, order_number, user_id, subtotal, shipping_total, discount_total, grand_total,
		       payment_method, payment_status, status,
		       ship_name, ship_phone, ship_street, ship_city, ship_district, ship_lat, ship_lng,
		       created_at, updated_at, paid_at, completed_at, cancelled_at, version
		FROM oms_orders WHERE id = $1
	`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "order", nil)
		}

		return nil, domain.MapInfraErr("load order", err)
	}

	s.cache.Set(id.String(), o, 1)

	return o, nil
}

// ListByCustomer retrieves the paginated orders belonging to userID.
func (s *Store) ListByCustomer(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*orderv1.Order, error) {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "order list requires an active transaction", nil)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, order_number, user_id, subtotal, shipping_total, discount_total, grand_total,
		       payment_method, payment_status, status,
		       ship_name, ship_phone, ship_street, ship_city, ship_district, ship_lat, ship_lng,
		       created_at, updated_at, paid_at, completed_at, cancelled_at, version
		FROM oms_orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, domain.MapInfraErr("list orders by customer", err)
	}
	defer rows.Close()

	var out []*orderv1.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan order", err)
		}

		out = append(out, o)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*orderv1.Order, error) {
	var (
		id                                                        uuid.UUID
		orderNumber                                                string
		userID                                                     uuid.UUID
		subtotal, shippingTotal, discountTotal, grandTotal         decimal.Decimal
		paymentMethod, paymentStatus, status                       string
		shipName, shipPhone, shipStreet, shipCity, shipDistrict    string
		shipLat, shipLng                                           float64
		createdAt, updatedAt                                       time.Time
		paidAt, completedAt, cancelledAt                           *time.Time
		version                                                    int
	)

	if err := row.Scan(
		&id, &orderNumber, &userID, &subtotal, &shippingTotal, &discountTotal, &grandTotal,
		&paymentMethod, &paymentStatus, &status,
		&shipName, &shipPhone, &shipStreet, &shipCity, &shipDistrict, &shipLat, &shipLng,
		&createdAt, &updatedAt, &paidAt, &completedAt, &cancelledAt, &version,
	); err != nil {
		return nil, err
	}

	loc, err := location.NewLocation(shipLat, shipLng)
	if err != nil {
		return nil, err
	}

	shipping, err := vo.NewAddress(shipName, shipPhone, shipStreet, shipCity, shipDistrict, loc)
	if err != nil {
		return nil, err
	}

	totals := money.Totals{Subtotal: subtotal, ShippingTotal: shippingTotal, DiscountTotal: discountTotal, GrandTotal: grandTotal}

	return orderv1.Reconstitute(
		id, userID, orderNumber, totals,
		orderv1.PaymentMethod(paymentMethod), orderv1.PaymentStatus(paymentStatus), orderv1.OrderStatus(status),
		shipping, orderv1.Timestamps{CreatedAt: createdAt, UpdatedAt: updatedAt, PaidAt: paidAt, CompletedAt: completedAt, CancelledAt: cancelledAt},
		version,
	), nil
}
