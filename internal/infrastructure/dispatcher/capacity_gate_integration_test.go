//go:build integration

package dispatcher

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	shipperv1 "github.com/shortlink-org/shop/oms/internal/domain/shipper/v1"
	"github.com/shortlink-org/shop/oms/internal/testhelpers"
)

func setupGate(t *testing.T) (*CapacityGate, *testhelpers.PostgresContainer) {
	t.Helper()

	pg := testhelpers.SetupPostgresContainer(t)

	ddl, err := os.ReadFile("../repository/postgres/shipper/migrations/0001_shippers.up.sql")
	require.NoError(t, err)

	_, err = pg.Pool.Exec(context.Background(), string(ddl))
	require.NoError(t, err)

	return NewWithPool(pg.Pool), pg
}

func seedShipper(t *testing.T, pg *testhelpers.PostgresContainer, maxDaily int) uuid.UUID {
	t.Helper()

	ctx := context.Background()
	officeID := uuid.New()

	_, err := pg.Pool.Exec(ctx, `
		INSERT INTO oms_post_offices (id, code, office_type, city, district, region, lat, lng)
		VALUES ($1, $2, 'local', 'HCM', 'Q1', 'south', 10.77, 106.70)`,
		officeID, "PO-"+officeID.String()[:8])
	require.NoError(t, err)

	shipperID := uuid.New()

	_, err = pg.Pool.Exec(ctx, `
		INSERT INTO oms_shippers (id, user_id, post_office_id, vehicle, status, is_online, is_available, max_daily_orders)
		VALUES ($1, $2, $3, 'motorbike', 'active', TRUE, TRUE, $4)`,
		shipperID, uuid.New(), officeID, maxDaily)
	require.NoError(t, err)

	return shipperID
}

func counters(t *testing.T, pg *testhelpers.PostgresContainer, shipperID uuid.UUID) (pickup, delivery int) {
	t.Helper()

	err := pg.Pool.QueryRow(context.Background(),
		`SELECT current_pickup_count, current_delivery_count FROM oms_shippers WHERE id = $1`, shipperID).
		Scan(&pickup, &delivery)
	require.NoError(t, err)

	return pickup, delivery
}

func TestCapacityGate_TryIncrementRespectsCap(t *testing.T) {
	gate, pg := setupGate(t)
	shipperID := seedShipper(t, pg, 2)

	ctx := context.Background()

	ok, err := gate.TryIncrement(ctx, shipperID, shipperv1.CounterPickup)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = gate.TryIncrement(ctx, shipperID, shipperv1.CounterDelivery)
	require.NoError(t, err)
	require.True(t, ok)

	// Cap reached: pickup + delivery == max_daily_orders.
	ok, err = gate.TryIncrement(ctx, shipperID, shipperv1.CounterPickup)
	require.NoError(t, err)
	require.False(t, ok)

	pickup, delivery := counters(t, pg, shipperID)
	require.Equal(t, 1, pickup)
	require.Equal(t, 1, delivery)
}

func TestCapacityGate_ConcurrentIncrementsYieldExactlyCapWinners(t *testing.T) {
	gate, pg := setupGate(t)
	shipperID := seedShipper(t, pg, 1)

	const contenders = 16

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for range contenders {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := gate.TryIncrement(context.Background(), shipperID, shipperv1.CounterPickup)
			require.NoError(t, err)

			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 1, wins)

	pickup, _ := counters(t, pg, shipperID)
	require.Equal(t, 1, pickup)
}

func TestCapacityGate_ResetDailyIdempotent(t *testing.T) {
	gate, pg := setupGate(t)
	shipperID := seedShipper(t, pg, 5)

	ctx := context.Background()

	var officeID uuid.UUID

	require.NoError(t, pg.Pool.QueryRow(ctx,
		`SELECT post_office_id FROM oms_shippers WHERE id = $1`, shipperID).Scan(&officeID))

	ok, err := gate.TryIncrement(ctx, shipperID, shipperv1.CounterPickup)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, gate.ResetDaily(ctx, officeID))
	require.NoError(t, gate.ResetDaily(ctx, officeID))

	pickup, delivery := counters(t, pg, shipperID)
	require.Zero(t, pickup)
	require.Zero(t, delivery)
}
