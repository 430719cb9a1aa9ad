// Package postgres implements ports.ShipperRepository and
// ports.PostOfficeRepository against PostgreSQL in one Store, mirroring the
// roster's single-schema coupling in the data model. The capacity-cap invariant itself
// (currentPickupCount+currentDeliveryCount <= maxDailyOrders) is additionally
// enforced as a CHECK constraint, following the Persistence Gateway's stated
// job of enforcing "only what SQL cannot" everywhere else -- here SQL
// can, so it does.
package postgres

import (
	"context"
	"embed"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink-org/go-sdk/db"
	"github.com/shortlink-org/go-sdk/db/drivers/postgres/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ports.ShipperRepository and ports.PostOfficeRepository.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL shipper/post-office repository.
func New(ctx context.Context, store db.DB) (*Store, error) {
	pool, ok := store.GetConn().(*pgxpool.Pool)
	if !ok {
		return nil, db.ErrGetConnection
	}

	if err := migrate.Migration(ctx, store, migrations, "repository_shipper"); err != nil {
		return nil, err
	}

	return &Store{pool: pool}, nil
}
