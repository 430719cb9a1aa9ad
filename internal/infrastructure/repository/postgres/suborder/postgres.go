// Package postgres implements ports.SubOrderRepository against PostgreSQL.
// Grounded on the sibling order repository's shape (pgx pool + ristretto L1
// cache + go-sdk migration runner); the item lines live in a child table
// instead of the order repository's single-row shipping snapshot, per the
// data model's OrderItem entity.
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

	suborderv1 "github.com/shortlink-org/shop/oms/internal/domain/suborder/v1"
)

const (
	cacheNumCounters = 1e6
	cacheMaxCost     = 1 << 24
	cacheBufferItems = 64
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ports.SubOrderRepository using PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	cache *ristretto.Cache[string, *suborderv1.SubOrder]
}

// New creates a new PostgreSQL sub-order repository with an L1 cache.
func New(ctx context.Context, store db.DB) (*Store, error) {
	pool, ok := store.GetConn().(*pgxpool.Pool)
	if !ok {
		return nil, db.ErrGetConnection
	}

	if err := migrate.Migration(ctx, store, migrations, "repository_suborder"); err != nil {
		return nil, err
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *suborderv1.SubOrder]{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sub-order cache: %w", err)
	}

	return &Store{pool: pool, cache: cache}, nil
}

// Close releases the cache.
func (s *Store) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}
