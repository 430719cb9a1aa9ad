// Package providers holds the concrete shipping.ShippingProvider adapters:
// the in-house carrier (no outbound HTTP, backed by the Dispatcher roster)
// and the external carriers, each with its own status-token table and
// HMAC-SHA256 webhook contract.
package providers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// perKgRateVND and baseFeeVND price the in-house carrier: a flat base fee
// plus a per-kilogram rate. The fee aggregator falls back to this quote
// when every external carrier fails.
const (
	baseFeeVND   = 15_000
	perKgRateVND = 5_000
)

// InHouse implements shipping.ShippingProvider without any outbound call:
// every operation is computed locally or defers to the Dispatcher/Shipment
// aggregate, which already own in-house order state.
type InHouse struct{}

// NewInHouse is a shipping.Constructor: credentials are ignored, the
// in-house carrier has none.
func NewInHouse(_ shipping.Credentials) (shipping.ShippingProvider, error) {
	return &InHouse{}, nil
}

func (p *InHouse) Code() shipping.ProviderCode { return shipping.ProviderInHouse }

// CalculateFee applies a flat base fee plus a per-kilogram rate.
func (p *InHouse) CalculateFee(_ context.Context, req shipping.FeeRequest) (decimal.Decimal, error) {
	kg := decimal.NewFromInt(int64(req.Items.WeightGrams)).Div(decimal.NewFromInt(1000))
	fee := decimal.NewFromInt(baseFeeVND).Add(kg.Mul(decimal.NewFromInt(perKgRateVND)))

	return fee, nil
}

// CreateOrder mints a tracking number locally; the Dispatcher assigns an
// actual shipper afterward, the in-house carrier has no external order
// system to round-trip to.
func (p *InHouse) CreateOrder(_ context.Context, _ shipping.CreateOrderRequest) (shipping.CreateOrderResult, error) {
	id := uuid.New().String()

	return shipping.CreateOrderResult{
		TrackingNumber:  "IH-" + id[:8],
		ProviderOrderID: id,
	}, nil
}

// CancelOrder is a no-op: in-house cancellation is modeled entirely by the
// Shipment aggregate's own status transitions.
func (p *InHouse) CancelOrder(_ context.Context, _ string) error { return nil }

// GetTracking always fails with a validation error: in-house status is
// driven by the Shipment aggregate and the location pipeline, never read
// back through this facade.
func (p *InHouse) GetTracking(_ context.Context, _ string) (shipping.TrackingResult, error) {
	return shipping.TrackingResult{}, domain.Wrap(domain.ErrValidation, "in-house carrier has no external tracking source", nil)
}

// ValidateWebhook always rejects: the in-house carrier never originates a
// webhook, status updates arrive via the Dispatcher/Shipment flow directly.
func (p *InHouse) ValidateWebhook(_ string, _ []byte) bool { return false }

func (p *InHouse) ParseWebhookPayload(_ []byte) (shipping.WebhookPayload, error) {
	return shipping.WebhookPayload{}, domain.Wrap(domain.ErrValidation, "in-house carrier has no webhook source", nil)
}

func (p *InHouse) TestConnection(_ context.Context) error { return nil }

func (p *InHouse) Refund(_ context.Context, _ string, _ decimal.Decimal) error { return nil }
