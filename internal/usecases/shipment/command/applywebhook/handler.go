package applywebhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipping/facade"
)

// Handler validates and applies an inbound carrier webhook to the Shipment
// it names.
type Handler struct {
	log          logger.Logger
	uow          ports.UnitOfWork
	shipmentRepo ports.ShipmentRepository
	facade       *facade.Facade
	publisher    ports.EventPublisher
}

// NewHandler creates a new ApplyWebhook handler.
func NewHandler(log logger.Logger, uow ports.UnitOfWork, shipmentRepo ports.ShipmentRepository, facade *facade.Facade, publisher ports.EventPublisher) (*Handler, error) {
	return &Handler{log: log, uow: uow, shipmentRepo: shipmentRepo, facade: facade, publisher: publisher}, nil
}

func (h *Handler) Handle(ctx context.Context, cmd Command) error {
	payload, err := h.facade.ValidateAndParseWebhook(ctx, cmd.ShopID, cmd.ProviderCode, cmd.Signature, cmd.Body)
	if err != nil {
		return err
	}

	if payload.TrackingNumber == "" {
		return domain.Wrap(domain.ErrValidation, "webhook payload missing tracking number", nil)
	}

	ctx, err = h.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := h.uow.Rollback(ctx); err != nil {
			h.log.Warn("transaction rollback failed", slog.Any("error", err))
		}
	}()

	shipment, err := h.shipmentRepo.LoadByTrackingNumber(ctx, string(cmd.ProviderCode), payload.TrackingNumber)
	if err != nil {
		return err
	}

	if _, err := shipment.ApplyStatus(payload.Status, payload.ProviderStatus, payload.Message, payload.Raw, payload.At); err != nil {
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
				slog.String("shipment_id", shipment.ID().String()),
				slog.Any("error", err))
		}
	}
	shipment.ClearDomainEvents()

	return nil
}
