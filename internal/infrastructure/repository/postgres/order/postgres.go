// Package postgres implements ports.OrderRepository against PostgreSQL:
// pgx pool, ristretto L1 read cache, go-sdk migration runner, optimistic
// concurrency via a version column.
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

	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
)

const (
	cacheNumCounters = 1e6
	cacheMaxCost     = 1 << 24
	cacheBufferItems = 64
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ports.OrderRepository using PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	cache *ristretto.Cache[string, *orderv1.Order]
}

// New creates a new PostgreSQL order repository with an L1 cache.
func New(ctx context.Context, store db.DB) (*Store, error) {
	pool, ok := store.GetConn().(*pgxpool.Pool)
	if !ok {
		return nil, db.ErrGetConnection
	}

	if err := migrate.Migration(ctx, store, migrations, "repository_order"); err != nil {
		return nil, err
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *orderv1.Order]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order cache: %w", err)
	}

	return &Store{pool: pool, cache: cache}, nil
}

// Close releases the cache.
func (s *Store) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
