package markfailed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// Handler applies a failed observation to a Shipment.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	shipmentRepo ports.ShipmentRepository
	publisher    ports.EventPublisher
}

// NewHandler creates a new MarkFailed handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, shipmentRepo ports.ShipmentRepository, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipmentRepo: shipmentRepo, publisher: publisher}, nil
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

	if _, err := shipment.ApplyStatus(shipping.StatusFailed, "", cmd.Reason, nil, cmd.At); err != nil {
		return err
	}

	if err := h.shipmentRepo.Save(ctx, shipment); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, event := range shipment.DomainEvents() {
		if err := h.publisher.Publish(ctx, event.EventType(), event); err != nil {
			h.log.Error("failed to publish domain event",
				slog.String("shipment_id", cmd.ShipmentID.String()),
				slog.Any("error", err))
		}
	}
	shipment.ClearDomainEvents()

	return nil
}
