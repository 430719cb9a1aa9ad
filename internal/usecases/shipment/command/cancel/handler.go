package cancel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipping/facade"
)

// Handler cancels a Shipment.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	shipmentRepo ports.ShipmentRepository
	facade       *facade.Facade
	publisher    ports.EventPublisher
}

// NewHandler creates a new shipment Cancel handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, shipmentRepo ports.ShipmentRepository, facade *facade.Facade, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipmentRepo: shipmentRepo, facade: facade, publisher: publisher}, nil
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

	if shipping.IsTerminal(shipment.Status()) {
		return domain.Wrap(domain.ErrConflict, "shipment is terminal", nil)
	}

	if shipment.ProviderCode() != shipping.ProviderInHouse && shipment.ProviderOrderID() != "" {
		if err := h.facade.CancelOrder(ctx, cmd.ShopID, shipment.ProviderCode(), shipment.ProviderOrderID()); err != nil {
			return err
		}
	}

	if _, err := shipment.ApplyStatus(shipping.StatusCancelled, "", cmd.Reason, nil, cmd.At); err != nil {
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
