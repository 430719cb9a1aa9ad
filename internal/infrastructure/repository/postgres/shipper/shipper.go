package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/location"
	shipperv1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

const shipperColumns = `id, user_id, post_office_id, vehicle, status, is_online, is_available, lat, lng,
	last_heartbeat, current_pickup_count, current_delivery_count, max_daily_orders,
	completed_deliveries, failed_deliveries, avg_rating, version`

// Load retrieves a shipper by id.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*shipperv1.Shipper, error) {
	row := s.querier(ctx).QueryRow(ctx, "SELECT "+shipperColumns+" FROM oms_shippers WHERE id = $1", id)

	shipper, err := scanShipper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Wrap(domain.ErrNotFound, "shipper", nil)
		}

		return nil, domain.MapInfraErr("load shipper", err)
	}

	return shipper, nil
}

// Save upserts a shipper, checking the optimistic-concurrency version on
// update, same pattern as the sibling repositories.
func (s *Store) Save(ctx context.Context, sh *shipperv1.Shipper) error {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return domain.Wrap(domain.ErrInternal, "shipper save requires an active transaction", nil)
	}

	perf := sh.Performance()
	loc := sh.CurrentLocation()

	tag, err := tx.Exec(ctx, `
		UPDATE oms_shippers SET
			vehicle = $2, status = $3, is_online = $4, is_available = $5, lat = $6, lng = $7,
			last_heartbeat = $8, current_pickup_count = $9, current_delivery_count = $10,
			max_daily_orders = $11, completed_deliveries = $12, failed_deliveries = $13,
			avg_rating = $14, version = version + 1
		WHERE id = $1 AND version = $15`,
		sh.ID(), sh.Vehicle(), sh.Status(), sh.IsOnline(), sh.IsAvailable(), loc.Latitude(), loc.Longitude(),
		sh.LastHeartbeat(), sh.PickupCount(), sh.DeliveryCount(), sh.MaxDailyOrders(),
		perf.CompletedDeliveries, perf.FailedDeliveries, perf.AvgRating, sh.Version(),
	)
	if err != nil {
		return domain.MapInfraErr("update shipper", err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	tag, err = tx.Exec(ctx, `
		INSERT INTO oms_shippers (
			id, user_id, post_office_id, vehicle, status, is_online, is_available, lat, lng,
			last_heartbeat, current_pickup_count, current_delivery_count, max_daily_orders,
			completed_deliveries, failed_deliveries, avg_rating, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,0)
		ON CONFLICT (id) DO NOTHING`,
		sh.ID(), sh.UserID(), sh.PostOfficeID(), sh.Vehicle(), sh.Status(), sh.IsOnline(), sh.IsAvailable(),
		loc.Latitude(), loc.Longitude(), sh.LastHeartbeat(), sh.PickupCount(), sh.DeliveryCount(),
		sh.MaxDailyOrders(), perf.CompletedDeliveries, perf.FailedDeliveries, perf.AvgRating,
	)
	if err != nil {
		return domain.MapInfraErr("insert shipper", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: shipper", domain.ErrVersionConflict)
	}

	return nil
}

// CandidatesForOffice returns shippers at postOfficeID passing the
// non-counter half of the eligibility filter.
func (s *Store) CandidatesForOffice(ctx context.Context, postOfficeID uuid.UUID) ([]*shipperv1.Shipper, error) {
	return s.queryShippers(ctx, `SELECT `+shipperColumns+` FROM oms_shippers
		WHERE post_office_id = $1 AND status = 'active' AND is_online = TRUE AND is_available = TRUE`, postOfficeID)
}

// ListByOffice returns every shipper at postOfficeID, with no eligibility
// filter.
func (s *Store) ListByOffice(ctx context.Context, postOfficeID uuid.UUID) ([]*shipperv1.Shipper, error) {
	return s.queryShippers(ctx, `SELECT `+shipperColumns+` FROM oms_shippers WHERE post_office_id = $1`, postOfficeID)
}

func (s *Store) queryShippers(ctx context.Context, sql string, args ...any) ([]*shipperv1.Shipper, error) {
	rows, err := s.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.MapInfraErr("list shippers", err)
	}
	defer rows.Close()

	var out []*shipperv1.Shipper

	for rows.Next() {
		shipper, err := scanShipper(rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan shipper", err)
		}

		out = append(out, shipper)
	}

	return out, rows.Err()
}

func scanShipper(row rowScanner) (*shipperv1.Shipper, error) {
	var (
		id, userID, postOfficeID                   uuid.UUID
		vehicle, status                             string
		isOnline, isAvailable                       bool
		lat, lng                                    float64
		lastHeartbeat                               int64
		pickupCount, deliveryCount, maxDailyOrders  int
		completedDeliveries, failedDeliveries       int
		avgRating                                   float64
		version                                     int
	)

	if err := row.Scan(&id, &userID, &postOfficeID, &vehicle, &status, &isOnline, &isAvailable, &lat, &lng,
		&lastHeartbeat, &pickupCount, &deliveryCount, &maxDailyOrders,
		&completedDeliveries, &failedDeliveries, &avgRating, &version); err != nil {
		return nil, err
	}

	loc, err := location.NewLocation(lat, lng)
	if err != nil {
		return nil, err
	}

	perf := shipperv1.Performance{
		CompletedDeliveries: completedDeliveries,
		FailedDeliveries:    failedDeliveries,
		AvgRating:           avgRating,
	}

	return shipperv1.Reconstitute(id, userID, postOfficeID, shipperv1.Vehicle(vehicle), shipperv1.Status(status),
		isOnline, isAvailable, loc, lastHeartbeat, pickupCount, deliveryCount, maxDailyOrders, perf, version), nil
}
