package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain/order/v1/vo"
)

// ProviderCode is a closed, case-insensitive enum of carrier codes.
type ProviderCode string

const (
	ProviderGHTK        ProviderCode = "ghtk"
	ProviderGHN         ProviderCode = "ghn"
	ProviderViettelPost ProviderCode = "viettelpost"
	ProviderInHouse     ProviderCode = "inhouse"
)

// Package is the parcel physical description used for fee calculation.
type Package struct {
	WeightGrams int
	ValueVND    decimal.Decimal
}

// FeeRequest is the input to calculateFee.
type FeeRequest struct {
	ShopID   uuid.UUID
	Pickup   vo.Address
	Delivery vo.Address
	Items    Package
	CODAmount decimal.Decimal
}

// FeeQuote is one provider's answer to a FeeRequest; failures are carried in
// Err rather than returned as Go errors so the caller can display partial
// options.
type FeeQuote struct {
	ProviderCode ProviderCode
	FeeVND       decimal.Decimal
	Fallback     bool
	Err          error
}

// CreateOrderRequest is the input to createOrder.
type CreateOrderRequest struct {
	ShopID    uuid.UUID
	Pickup    vo.Address
	Delivery  vo.Address
	Items     Package
	CODAmount decimal.Decimal
}

// CreateOrderResult must carry a non-empty TrackingNumber on success.
type CreateOrderResult struct {
	TrackingNumber  string
	ProviderOrderID string
}

// TrackingResult is returned by getTracking, possibly stale.
type TrackingResult struct {
	Status         UnifiedStatus
	ProviderStatus string
	Stale          bool
	Err            error
	At             time.Time
}

// WebhookPayload is the normalized result of parseWebhookPayload.
type WebhookPayload struct {
	ProviderOrderID string
	TrackingNumber  string
	Status          UnifiedStatus
	ProviderStatus  string
	Message         string
	At              time.Time
	Raw             map[string]any
}

// ShippingProvider is the polymorphic capability set every concrete carrier
// (external or in-house) implements.
type ShippingProvider interface {
	Code() ProviderCode
	CalculateFee(ctx context.Context, req FeeRequest) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error)
	CancelOrder(ctx context.Context, providerOrderID string) error
	GetTracking(ctx context.Context, trackingNumber string) (TrackingResult, error)
	ValidateWebhook(signature string, body []byte) bool
	ParseWebhookPayload(body []byte) (WebhookPayload, error)
	TestConnection(ctx context.Context) error
	Refund(ctx context.Context, providerOrderID string, amountVND decimal.Decimal) error
}

// Constructor builds a ShippingProvider for one shop from its decrypted
// credentials; registered once per ProviderCode in the registry.
type Constructor func(creds Credentials) (ShippingProvider, error)

// Credentials is the decrypted form of a ProviderConfig row; concrete
// providers type-assert to their own shape (the closed sum type).
type Credentials struct {
	ProviderCode ProviderCode
	APIKey       string
	APISecret    string
	ShopCode     string
	Extra        map[string]string
	Sandbox      bool
}
