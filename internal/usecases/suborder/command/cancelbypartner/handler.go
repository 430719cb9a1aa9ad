package cancelbypartner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Handler handles CancelByPartner commands.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	subOrderRepo ports.SubOrderRepository
	publisher    ports.EventPublisher
}

// NewHandler creates a new CancelByPartner handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, subOrderRepo ports.SubOrderRepository, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, subOrderRepo: subOrderRepo, publisher: publisher}, nil
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

	so, err := h.subOrderRepo.Load(ctx, cmd.SubOrderID)
	if err != nil {
		return err
	}

	if err := so.CancelByPartner(cmd.Actor); err != nil {
		return err
	}

	if err := h.subOrderRepo.Save(ctx, so); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, event := range so.DomainEvents() {
		if err := h.publisher.Publish(ctx, event.EventType(), event); err != nil {
			h.log.Error("failed to publish domain event",
				slog.String("suborder_id", cmd.SubOrderID.String()),
				slog.Any("error", err))
		}
	}
	so.ClearDomainEvents()

	return nil
}
