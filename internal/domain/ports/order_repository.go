package ports

import (
	"context"

	"github.com/google/uuid"

	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
)

// OrderRepository defines the minimal interface for order persistence.
// Repository is a storage adapter (infrastructure layer), NOT a use-case.
//
// Rules:
//   - Only Load and Save operations (no business operations like Cancel/Complete)
//   - UseCase orchestrates: Load -> domain method(s) -> Save
//   - Domain aggregate contains behavior and invariants
type OrderRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*orderv1.Order, error)
	Save(ctx context.Context, order *orderv1.Order) error
	ListByCustomer(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*orderv1.Order, error)
}
