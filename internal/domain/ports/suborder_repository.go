package ports

import (
	"context"

	"github.com/google/uuid"

	suborderv1 "github.com/shortlink-org/shop/oms/internal/domain/suborder/v1"
)

// SubOrderRepository persists SubOrder aggregates.
type SubOrderRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*suborderv1.SubOrder, error)
	Save(ctx context.Context, so *suborderv1.SubOrder) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*suborderv1.SubOrder, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*suborderv1.SubOrder, error)
}
