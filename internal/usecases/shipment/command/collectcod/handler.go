package collectcod

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Handler records COD collection on a delivered Shipment.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	shipmentRepo ports.ShipmentRepository
}

// NewHandler creates a new CollectCOD handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, shipmentRepo ports.ShipmentRepository) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipmentRepo: shipmentRepo}, nil
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

	shipment, err := h.shipmentRepo.Load(ctx, cmd.ShipmentID)
	if err != nil {
		return err
	}

	if err := shipment.CollectCOD(); err != nil {
		return err
	}

	if err := h.shipmentRepo.Save(ctx, shipment); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
