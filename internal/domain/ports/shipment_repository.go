package ports

import (
	"context"

	"github.com/google/uuid"

	shipmentv1 "github.com/shortlink-org/shop/oms/internal/domain/shipment/v1"
)

// ShipmentRepository persists Shipment aggregates.
type ShipmentRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*shipmentv1.Shipment, error)
	LoadByTrackingNumber(ctx context.Context, providerCode, trackingNumber string) (*shipmentv1.Shipment, error)
	Save(ctx context.Context, s *shipmentv1.Shipment) error
	ListBySubOrder(ctx context.Context, subOrderID uuid.UUID) ([]*shipmentv1.Shipment, error)
}
