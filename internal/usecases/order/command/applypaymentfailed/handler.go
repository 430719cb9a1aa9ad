package applypaymentfailed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Handler handles ApplyPaymentFailed commands.
type Handler struct {
	log       logger.Logger
	uow       ports.UnitOfWork
	orderRepo ports.OrderRepository
	publisher ports.EventPublisher
}

// NewHandler creates a new ApplyPaymentFailed handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, orderRepo ports.OrderRepository, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, orderRepo: orderRepo, publisher: publisher}, nil
}

func (h *Handler) Handle(ctx context.Context, cmd Command) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := h.uow.Rollback(ctx); err != nil {
			h.log.Warn("transaction rollback failed", slog.Any("error", err))
		}
	}()

	order, err := h.orderRepo.Load(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	if err := order.ApplyPaymentFailed(); err != nil {
		return err
	}

	if err := h.orderRepo.Save(ctx, order); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, event := range order.DomainEvents() {
		if err := h.publisher.Publish(ctx, event.EventType(), event); err != nil {
			h.log.Error("failed to publish domain event",
				slog.String("order_id", cmd.OrderID.String()),
				slog.Any("error", err))
		}
	}
	order.ClearDomainEvents()

	return nil
}
