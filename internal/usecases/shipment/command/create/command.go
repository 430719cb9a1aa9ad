package create

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// Command creates a Shipment for a SubOrder that just became ready_to_ship.
// For ProviderInHouse the Dispatcher is invoked (a follow-up
// dispatchshipment command, triggered by the same usecase); for any other
// provider the Facade's CreateOrder books it with the carrier directly.
type Command struct {
	SubOrderID   uuid.UUID
	ShopID       uuid.UUID
	ProviderCode shipping.ProviderCode
	Pickup       vo.Address
	Delivery     vo.Address
	Package      shipping.Package
	CODAmount    decimal.Decimal
}
