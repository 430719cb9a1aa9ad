package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shortlink-org/shop/oms/internal/domain"
	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

// Save persists sh with optimistic concurrency control (version column).
// Requires a transaction in context (see pkg/uow).
func (s *Store) Save(ctx context.Context, sh *shipmentv1.Shipment) error {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return domain.Wrap(domain.ErrInternal, "shipment save requires an active transaction", nil)
	}

	legs, err := json.Marshal(sh.Legs())
	if err != nil {
		return domain.Wrap(domain.ErrInternal, "marshal legs", err)
	}

	history, err := json.Marshal(sh.History())
	if err != nil {
		return domain.Wrap(domain.ErrInternal, "marshal history", err)
	}

	pickup, delivery, pkg := sh.Pickup(), sh.Delivery(), sh.Package()
	ts := sh.Timestamps()

	if sh.Version() == 0 {
		_, err := tx.Exec(ctx, `
			INSERT INTO oms_shipments (
				id, suborder_id, tracking_number, provider_code, provider_order_id, status,
				pickup_name, pickup_phone, pickup_street, pickup_city, pickup_district, pickup_lat, pickup_lng,
				delivery_name, delivery_phone, delivery_street, delivery_city, delivery_district, delivery_lat, delivery_lng,
				weight_grams, value_vnd, cod_amount, cod_collected, legs, history, retry_count,
				picked_up_at, delivered_at, cancelled_at, last_webhook_at, version
			) VALUES (
				$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
				$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,1
			)
		`,
			sh.ID(), sh.SubOrderID(), sh.TrackingNumber(), string(sh.ProviderCode()), sh.ProviderOrderID(), string(sh.Status()),
			pickup.Name(), pickup.Phone(), pickup.Street(), pickup.City(), pickup.District(), pickup.Location().Latitude(), pickup.Location().Longitude(),
			delivery.Name(), delivery.Phone(), delivery.Street(), delivery.City(), delivery.District(), delivery.Location().Latitude(), delivery.Location().Longitude(),
			pkg.WeightGrams, pkg.ValueVND, sh.CODAmount(), sh.CODCollected(), legs, history, sh.RetryCount(),
			ts.PickedUpAt, ts.DeliveredAt, ts.CancelledAt, ts.LastWebhook,
		)
		if err != nil {
			return domain.MapInfraErr("insert shipment", err)
		}

		sh.IncrementVersion()
		s.cache.Del(sh.ID().String())

		return nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE oms_shipments SET
			tracking_number = $1, provider_order_id = $2, status = $3, cod_collected = $4,
			legs = $5, history = $6, retry_count = $7,
			picked_up_at = $8, delivered_at = $9, cancelled_at = $10, last_webhook_at = $11,
			version = version + 1
		WHERE id = $12 AND version = $13
	`,
		sh.TrackingNumber(), sh.ProviderOrderID(), string(sh.Status()), sh.CODCollected(),
		legs, history, sh.RetryCount(),
		ts.PickedUpAt, ts.DeliveredAt, ts.CancelledAt, ts.LastWebhook,
		sh.ID(), sh.Version(),
	)
	if err != nil {
		return domain.MapInfraErr("update shipment", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shipment", domain.ErrVersionConflict)
	}

	sh.IncrementVersion()
	s.cache.Del(sh.ID().String())

	return nil
}
