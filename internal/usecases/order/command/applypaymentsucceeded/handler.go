package applypaymentsucceeded

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Handler handles ApplyPaymentSucceeded commands, driven by the payment
// webhook consumer, not by an end-user request. Alongside the Order
// transition it appends the PaymentConfirmed tracking event to every
// SubOrder of the Order.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	orderRepo    ports.OrderRepository
	subOrderRepo ports.SubOrderRepository
	publisher    ports.EventPublisher
}

// NewHandler creates a new ApplyPaymentSucceeded handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, orderRepo ports.OrderRepository, subOrderRepo ports.SubOrderRepository, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, orderRepo: orderRepo, subOrderRepo: subOrderRepo, publisher: publisher}, nil
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

	if err := order.ApplyPaymentSucceeded(); err != nil {
		return err
	}

	if err := h.orderRepo.Save(ctx, order); err != nil {
		return err
	}

	subOrders, err := h.subOrderRepo.ListByOrder(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	for _, so := range subOrders {
		so.RecordPaymentConfirmed()

		if err := h.subOrderRepo.Save(ctx, so); err != nil {
			return err
		}
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

	for _, so := range subOrders {
		for _, event := range so.DomainEvents() {
			if err := h.publisher.Publish(ctx, event.EventType(), event); err != nil {
				h.log.Error("failed to publish domain event",
					slog.String("suborder_id", so.ID().String()),
					slog.Any("error", err))
			}
		}
	}
	order.ClearDomainEvents()

	for _, so := range subOrders {
		so.ClearDomainEvents()
	}

	return nil
}
