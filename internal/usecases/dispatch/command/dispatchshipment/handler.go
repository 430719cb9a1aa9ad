package dispatchshipment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/dispatch"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// Handler drives the Shipper Dispatcher for one Shipment: resolves
// the route, assigns in-house shippers to every leg, and records the result
// on the Shipment aggregate. On failure it marks the Shipment unassigned
// instead of leaving it in limbo step 5.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	shipmentRepo ports.ShipmentRepository
	dispatcher   *dispatch.Dispatcher
	publisher    ports.EventPublisher
}

// NewHandler creates a new DispatchShipment handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, shipmentRepo ports.ShipmentRepository, dispatcher *dispatch.Dispatcher, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipmentRepo: shipmentRepo, dispatcher: dispatcher, publisher: publisher}, nil
}

// Handle executes the DispatchShipment command.
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

	plan, dispatchErr := h.dispatcher.Dispatch(ctx, dispatch.Request{
		ShipmentID:  shipment.ID(),
		PickupLoc:   shipment.Pickup().Location(),
		DeliveryLoc: shipment.Delivery().Location(),
	})

	if dispatchErr != nil {
		if !errors.Is(dispatchErr, domain.ErrNoShipperAvailable) {
			return dispatchErr
		}

		shipment.MarkUnassigned(dispatchErr.Error())
	} else {
		trackingNumber := inHouseTrackingNumber(shipment.ID())
		if err := shipment.AssignLegs(plan.Legs, "", trackingNumber); err != nil {
			return err
		}
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

	if dispatchErr != nil {
		return dispatchErr
	}

	return nil
}

// inHouseTrackingNumber mints a tracking number for the in-house carrier,
// which (unlike an external provider) has no booking call to return one.
func inHouseTrackingNumber(shipmentID uuid.UUID) string {
	return "IH-" + shipmentID.String()
}
