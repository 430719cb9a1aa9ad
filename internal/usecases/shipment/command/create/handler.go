package create

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/internal/usecases/dispatch/command/dispatchshipment"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipping/facade"
)

// Handler creates the Shipment for a SubOrder that just became
// ready_to_ship. ProviderInHouse hands off to the Dispatcher right after the
// Shipment is persisted; any other provider books the parcel with the
// carrier through the Facade first and records the carrier's own
// tracking/order-id pair.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	shipmentRepo ports.ShipmentRepository
	facade       *facade.Facade
	dispatch     *dispatchshipment.Handler
	publisher    ports.EventPublisher
}

// NewHandler creates a new shipment Create handler.
func NewHandler(
	log logger.Logger, uow ports.UnitOfWork, shipmentRepo ports.ShipmentRepository,
	facade *facade.Facade, dispatch *dispatchshipment.Handler, publisher ports.EventPublisher,
) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipmentRepo: shipmentRepo, facade: facade, dispatch: dispatch, publisher: publisher}, nil
}

func (h *Handler) Handle(ctx context.Context, cmd Command) (uuid.UUID, error) {
	shipmentID := uuid.New()

	shipment, err := shipmentv1.New(shipmentID, cmd.SubOrderID, cmd.ProviderCode, cmd.Pickup, cmd.Delivery, cmd.Package, cmd.CODAmount)
	if err != nil {
		return uuid.Nil, err
	}

	if cmd.ProviderCode != shipping.ProviderInHouse {
		result, err := h.facade.CreateOrder(ctx, cmd.ShopID, cmd.ProviderCode, shipping.CreateOrderRequest{
			ShopID: cmd.ShopID, Pickup: cmd.Pickup, Delivery: cmd.Delivery, Items: cmd.Package, CODAmount: cmd.CODAmount,
		})
		if err != nil {
			return uuid.Nil, err
		}

		if err := shipment.AssignLegs(nil, result.ProviderOrderID, result.TrackingNumber); err != nil {
			return uuid.Nil, err
		}
	}

	if err := h.persist(ctx, shipment); err != nil {
		return uuid.Nil, err
	}

	if cmd.ProviderCode == shipping.ProviderInHouse {
		if err := h.dispatch.Handle(ctx, dispatchshipment.NewCommand(shipmentID)); err != nil {
			return shipmentID, err
		}
	}

	return shipmentID, nil
}

func (h *Handler) persist(ctx context.Context, shipment *shipmentv1.Shipment) error {
	ctx, err := h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := h.uow.Rollback(ctx); err != nil {
			h.log.Warn("transaction rollback failed", slog.Any("error", err))
		}
	}()

	if err := h.shipmentRepo.Save(ctx, shipment); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, event := range shipment.DomainEvents() {
		if err := h.publisher.Publish(ctx, event.EventType(), event); err != nil {
			h.log.Error("failed to publish domain event",
				slog.String("shipment_id", shipment.ID().String()),
				slog.Any("error", err))
		}
	}
	shipment.ClearDomainEvents()

	return nil
}
