// Package postgres implements ports.ProviderConfigRepository. No L1 cache:
// configs change rarely but must reflect admin updates immediately, and the
// Facade already layers its own fee/tracking caches above this repository.
package postgres

import (
	"context"
	"embed"
	"errors"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortlink-org/go-sdk/db"
	"github.com/shortlink-org/go-sdk/db/drivers/postgres/migrate"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/pkg/uow"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements ports.ProviderConfigRepository.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL provider-config repository.
func New(ctx context.Context, store db.DB) (*Store, error) {
	pool, ok := store.GetConn().(*pgxpool.Pool)
	if !ok {
		return nil, db.ErrGetConnection
	}

	if err := migrate.Migration(ctx, store, migrations, "repository_providerconfig"); err != nil {
		return nil, err
	}

	return &Store{pool: pool}, nil
}

func (s *Store) querier(ctx context.Context) queryExecer {
	if tx := uow.FromContext(ctx); tx != nil {
		return tx
	}

	return s.pool
}

type queryExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const configColumns = `shop_id, provider_code, encrypted_credentials, sandbox, is_enabled, is_default`

// Get returns the config row for (shopID, code), or ErrProviderNotConfigured
// if absent or disabled.
func (s *Store) Get(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode) (shipping.ProviderConfig, error) {
	row := s.querier(ctx).QueryRow(ctx, `SELECT `+configColumns+` FROM oms_provider_configs
		WHERE shop_id = $1 AND provider_code = $2 AND is_enabled = TRUE`, shopID, string(code))

	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shipping.ProviderConfig{}, domain.ErrProviderNotConfigured
		}

		return shipping.ProviderConfig{}, domain.MapInfraErr("get provider config", err)
	}

	return cfg, nil
}

// EnabledForShop returns every enabled config row for shopID.
func (s *Store) EnabledForShop(ctx context.Context, shopID uuid.UUID) ([]shipping.ProviderConfig, error) {
	rows, err := s.querier(ctx).Query(ctx, `SELECT `+configColumns+` FROM oms_provider_configs
		WHERE shop_id = $1 AND is_enabled = TRUE`, shopID)
	if err != nil {
		return nil, domain.MapInfraErr("list provider configs", err)
	}
	defer rows.Close()

	var out []shipping.ProviderConfig

	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, domain.MapInfraErr("scan provider config", err)
		}

		out = append(out, cfg)
	}

	return out, rows.Err()
}

// Upsert writes or replaces the config row for (cfg.ShopID, cfg.ProviderCode).
func (s *Store) Upsert(ctx context.Context, cfg shipping.ProviderConfig) error {
	tx := uow.FromContext(ctx)
	if tx == nil {
		return domain.Wrap(domain.ErrInternal, "provider config upsert requires an active transaction", nil)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO oms_provider_configs (shop_id, provider_code, encrypted_credentials, sandbox, is_enabled, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (shop_id, provider_code) DO UPDATE SET
			encrypted_credentials = EXCLUDED.encrypted_credentials,
			sandbox = EXCLUDED.sandbox,
			is_enabled = EXCLUDED.is_enabled,
			is_default = EXCLUDED.is_default`,
		cfg.ShopID, string(cfg.ProviderCode), cfg.EncryptedCredentials, cfg.Sandbox, cfg.IsEnabled, cfg.IsDefault,
	)
	if err != nil {
		return domain.MapInfraErr("upsert provider config", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (shipping.ProviderConfig, error) {
	var (
		shopID       uuid.UUID
		providerCode string
		creds        []byte
		sandbox      bool
		isEnabled    bool
		isDefault    bool
	)

	if err := row.Scan(&shopID, &providerCode, &creds, &sandbox, &isEnabled, &isDefault); err != nil {
		return shipping.ProviderConfig{}, err
	}

	return shipping.ProviderConfig{
		ShopID:               shopID,
		ProviderCode:         shipping.ProviderCode(providerCode),
		EncryptedCredentials: creds,
		Sandbox:              sandbox,
		IsEnabled:            isEnabled,
		IsDefault:            isDefault,
	}, nil
}
