// Package postgres implements ports.ShipmentRepository against PostgreSQL.
// Grounded on the order repository's shape; legs and history are append-only
// JSON blobs per the data model's note that "status history and webhook
// payloads [are] stored as JSON blobs", instead of a normalized child
// table, since they are read and rewritten as a single unit on every save.
package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink-org/go-sdk/db"
	"github.com/shortlink-org/go-sdk/db/drivers/postgres/migrate"

	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
)

const (
	cacheNumCounters = 1e6
	cacheMaxCost     = 1 << 24
	cacheBufferItems = 64
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ports.ShipmentRepository using PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	cache *ristretto.Cache[string, *shipmentv1.Shipment]
}

// New creates a new PostgreSQL shipment repository with an L1 cache.
func New(ctx context.Context, store db.DB) (*Store, error) {
	pool, ok := store.GetConn().(*pgxpool.Pool)
	if !ok {
		return nil, db.ErrGetConnection
	}

	if err := migrate.Migration(ctx, store, migrations, "repository_shipment"); err != nil {
		return nil, err
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *shipmentv1.Shipment]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment cache: %w", err)
	}

	return &Store{pool: pool, cache: cache}, nil
}

// Close releases the cache.
func (s *Store) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
