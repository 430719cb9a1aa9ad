package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

const selectColumns = `
	id, suborder_id, tracking_number, provider_code, provider_order_id, status,
	pickup_name, pickup_phone, pickup_street, pickup_city, pickup_district, pickup_lat, pickup_lng,
	delivery_name, delivery_phone, delivery_street, delivery_city, delivery_district, delivery_lat, delivery_lng,
	weight_grams, value_vnd, cod_amount, cod_collected, legs, history, retry_count,
	picked_up_at, delivered_at, cancelled_at, last_webhook_at, version
`

// Load retrieves a shipment by id, consulting the L1 cache first.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*shipmentv1.Shipment, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached, nil
	}

	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "shipment load requires an active transaction", nil)
	}

	row := tx.QueryRow(ctx, "SELECT "+selectColumns+" FROM oms_shipments WHERE id = $1", id)

	sh, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "shipment", nil)
		}

		return nil, domain.MapInfraErr("load shipment", err)
	}

	s.cache.Set(id.String(), sh, 1)

	return sh, nil
}

// LoadByTrackingNumber retrieves a shipment by (providerCode, trackingNumber),
// the coordination key for webhook intake serialization.
func (s *Store) LoadByTrackingNumber(ctx context.Context, providerCode, trackingNumber string) (*shipmentv1.Shipment, error) {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "shipment load requires an active transaction", nil)
	}

	row := tx.QueryRow(ctx, "SELECT "+selectColumns+" FROM oms_shipments WHERE provider_code = $1 AND tracking_number = $2", providerCode, trackingNumber)

	sh, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "shipment", nil)
		}

		return nil, domain.MapInfraErr("load shipment by tracking number", err)
	}

	s.cache.Set(sh.ID().String(), sh, 1)

	return sh, nil
}

// ListBySubOrder retrieves every shipment issued for a sub-order.
func (s *Store) ListBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]*shipmentv1.Shipment, error) {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return nil, domain.Wrap(domain.ErrInternal, "shipment list requires an active transaction", nil)
	}

	rows, err := tx.Query(ctx, "SELECT "+selectColumns+" FROM oms_shipments WHERE suborder_id = $1 ORDER BY id", subOrderID)
	if err != nil {
		return nil, domain.MapInfraErr("list shipments by suborder", err)
	}
	defer rows.Close()

	var out []*shipmentv1.Shipment

	for rows.Next() {
		sh, err := scan(rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan shipment", err)
		}

		out = append(out, sh)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scan(row rowScanner) (*shipmentv1.Shipment, error) {
	var (
		id, subOrderID                                     uuid.UUID
		trackingNumber, providerCode, providerOrderID, stat string
		pickupName, pickupPhone, pickupStreet, pickupCity, pickupDistrict       string
		pickupLat, pickupLng                                                    float64
		deliveryName, deliveryPhone, deliveryStreet, deliveryCity, deliveryDist string
		deliveryLat, deliveryLng                                                float64
		weightGrams                                                             int
		valueVND, codAmount                                                     decimal.Decimal
		codCollected                                                            bool
		legsRaw, historyRaw                                                     []byte
		retryCount                                                              int
		pickedUpAt, deliveredAt, cancelledAt, lastWebhookAt                     *time.Time
		version                                                                 int
	)

	if err := row.Scan(
		&id, &subOrderID, &trackingNumber, &providerCode, &providerOrderID, &stat,
		&pickupName, &pickupPhone, &pickupStreet, &pickupCity, &pickupDistrict, &pickupLat, &pickupLng,
		&deliveryName, &deliveryPhone, &deliveryStreet, &deliveryCity, &deliveryDist, &deliveryLat, &deliveryLng,
		&weightGrams, &valueVND, &codAmount, &codCollected, &legsRaw, &historyRaw, &retryCount,
		&pickedUpAt, &deliveredAt, &cancelledAt, &lastWebhookAt, &version,
	); err != nil {
		return nil, err
	}

	pickupLoc, err := location.NewLocation(pickupLat, pickupLng)
	if err != nil {
		return nil, err
	}

	deliveryLoc, err := location.NewLocation(deliveryLat, deliveryLng)
	if err != nil {
		return nil, err
	}

	pickup, err := vo.NewAddress(pickupName, pickupPhone, pickupStreet, pickupCity, pickupDistrict, pickupLoc)
	if err != nil {
		return nil, err
	}

	delivery, err := vo.NewAddress(deliveryName, deliveryPhone, deliveryStreet, deliveryCity, deliveryDist, deliveryLoc)
	if err != nil {
		return nil, err
	}

	var legs []shipmentv1.Leg
	if err := json.Unmarshal(legsRaw, &legs); err != nil {
		return nil, err
	}

	var history []shipmentv1.HistoryEntry
	if err := json.Unmarshal(historyRaw, &history); err != nil {
		return nil, err
	}

	pkg := shipping.Package{WeightGrams: weightGrams, ValueVND: valueVND}
	ts := shipmentv1.Timestamps{PickedUpAt: pickedUpAt, DeliveredAt: deliveredAt, CancelledAt: cancelledAt, LastWebhook: lastWebhookAt}

	return shipmentv1.Reconstitute(
		id, subOrderID, trackingNumber, shipping.ProviderCode(providerCode), providerOrderID,
		shipping.UnifiedStatus(stat), pickup, delivery, pkg, codAmount, codCollected,
		legs, history, retryCount, ts, version,
	), nil
}
