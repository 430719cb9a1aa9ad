package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// ProviderConfigRepository loads the per-(shop, providerCode) credential and
// settings row. Decryption happens above
// this interface (the Facade calls CredentialVault.Decrypt on the blob this
// returns); the repository only moves bytes.
type ProviderConfigRepository interface {
	// Get returns the encrypted credentials blob and settings for one
	// (shopID, code), or domain.ErrProviderNotConfigured if absent/disabled.
	Get(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode) (shipping.ProviderConfig, error)
	// EnabledForShop returns every enabled ProviderConfig row for a shop,
	// used by the fee aggregator's parallel fan-out.
	EnabledForShop(ctx context.Context, shopID uuid.UUID) ([]shipping.ProviderConfig, error)
	Upsert(ctx context.Context, cfg shipping.ProviderConfig) error
}
