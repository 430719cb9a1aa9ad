package listbycustomer

import (
	"context"
	"fmt"

	orderv1 "github.com/shortlink-org/shop/oms/internal/domain/order/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Result is the result of the ListByCustomer query.
type Result = []*orderv1.Order

// Handler handles ListByCustomer queries.
type Handler struct {
	uow       ports.UnitOfWork
	orderRepo ports.OrderRepository
}

// NewHandler creates a new ListByCustomer handler.
func NewHandler(uow ports.UnitOfWork, orderRepo ports.OrderRepository) (*Handler, error) {
	return &Handler{uow: uow, orderRepo: orderRepo}, nil
}

// Handle executes the ListByCustomer query.
func (h *Handler) Handle(ctx context.Context, q Query) (Result, error) {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = h.uow.Rollback(ctx) }()

	orders, err := h.orderRepo.ListByCustomer(ctx, q.CustomerID, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return orders, nil
}

var _ ports.QueryHandler[Query, Result] = (*Handler)(nil)
