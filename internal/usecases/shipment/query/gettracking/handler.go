package gettracking

import (
	"context"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
	"github.com/shortlink-org/shop/oms/internal/usecases/shipping/facade"
)

// Handler answers GetTracking queries. In-house shipments track themselves
// (no external carrier to ask), so the Shipment's own status is returned
// directly; any other provider is asked through the Facade, which falls back
// to its cached snapshot when the provider fails.
type Handler struct {
	log          logger.Logger
	shipmentRepo ports.ShipmentRepository
	subOrderRepo ports.SubOrderRepository
	facade       *facade.Facade
}

// NewHandler creates a new GetTracking handler.
func NewHandler(log logger.Logger, shipmentRepo ports.ShipmentRepository, subOrderRepo ports.SubOrderRepository, facade *facade.Facade) (*Handler, error) {
	return &Handler{log: log, shipmentRepo: shipmentRepo, subOrderRepo: subOrderRepo, facade: facade}, nil
}

func (h *Handler) Handle(ctx context.Context, qry Query) (shipping.TrackingResult, error) {
	shipment, err := h.shipmentRepo.Load(ctx, qry.ShipmentID)
	if err != nil {
		return shipping.TrackingResult{}, err
	}

	if shipment.ProviderCode() == shipping.ProviderInHouse {
		result := shipping.TrackingResult{Status: shipment.Status()}

		if history := shipment.History(); len(history) > 0 {
			result.At = history[len(history)-1].At
		}

		return result, nil
	}

	so, err := h.subOrderRepo.Load(ctx, shipment.SubOrderID())
	if err != nil {
		return shipping.TrackingResult{}, err
	}

	return h.facade.GetTracking(ctx, so.ShopID(), shipment.ProviderCode(), shipment.TrackingNumber())
}
