package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shortlink-org/shop/oms/pkg/uow"
)

// queryExecer is the subset of pgx.Tx and pgxpool.Pool this package uses.
// Reads fall back to the pool when no transaction is open in ctx (the
// nearest-office/candidate-roster queries do not need one); writes always
// require a transaction via uow.FromContext, same as the sibling
// repositories.
type queryExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) querier(ctx context.Context) queryExecer {
	if tx := uow.FromContext(ctx); tx != nil {
		return tx
	}

	return s.pool
}
