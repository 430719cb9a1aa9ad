package applywebhook

import (
	"github.com/google/uuid"

	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// Command carries an inbound carrier webhook through to the owning
// Shipment, resolved by ShopID so the Facade can find the right provider
// credentials/secret for signature validation.
type Command struct {
	ShopID       uuid.UUID
	ProviderCode shipping.ProviderCode
	Signature    string
	Body         []byte
}
