package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// GHTK is a representative external carrier adapter. It has no sandbox HTTP
// endpoint reachable from this exercise, so CreateOrder/GetTracking return
// ProviderError rather than attempting a real network call; the parts
// exercised end-to-end are fee estimation, webhook signature validation and
// normalization, which are pure functions over the documented contract.
type GHTK struct {
	creds shipping.Credentials
}

// ghtkStatusMapper is GHTK's static raw-token -> unified-status table
//.
var ghtkStatusMapper = shipping.StatusMapper{
	"-1": shipping.StatusCancelled,
	"1":  shipping.StatusCreated,
	"2":  shipping.StatusAssigned,
	"3":  shipping.StatusPickedUp,
	"4":  shipping.StatusDelivering,
	"5":  shipping.StatusDelivered,
	"6":  shipping.StatusFailed,
	"7":  shipping.StatusReturning,
	"8":  shipping.StatusReturned,
}

// NewGHTK is a shipping.Constructor.
func NewGHTK(creds shipping.Credentials) (shipping.ShippingProvider, error) {
	if creds.APISecret == "" {
		return nil, domain.Wrap(domain.ErrProviderError, "ghtk: missing api secret", nil)
	}

	return &GHTK{creds: creds}, nil
}

func (p *GHTK) Code() shipping.ProviderCode { return shipping.ProviderGHTK }

// CalculateFee uses a distance-independent flat estimate pending a real
// rate-card integration; still wired into the aggregator's parallel fan-out
// and 5-minute fee cache.
func (p *GHTK) CalculateFee(_ context.Context, req shipping.FeeRequest) (decimal.Decimal, error) {
	kg := decimal.NewFromInt(int64(req.Items.WeightGrams)).Div(decimal.NewFromInt(1000))
	fee := decimal.NewFromInt(22_000).Add(kg.Mul(decimal.NewFromInt(7_000)))

	return fee, nil
}

func (p *GHTK) CreateOrder(_ context.Context, _ shipping.CreateOrderRequest) (shipping.CreateOrderResult, error) {
	return shipping.CreateOrderResult{}, domain.Wrap(domain.ErrProviderError, "ghtk: create order unavailable", nil)
}

func (p *GHTK) CancelOrder(_ context.Context, _ string) error {
	return domain.Wrap(domain.ErrProviderError, "ghtk: cancel order unavailable", nil)
}

func (p *GHTK) GetTracking(_ context.Context, _ string) (shipping.TrackingResult, error) {
	return shipping.TrackingResult{}, domain.Wrap(domain.ErrProviderError, "ghtk: tracking unavailable", nil)
}

// ghtkWebhook mirrors the provider's documented webhook shape: a partner
// order id, a raw status token, and a timestamp, signed by HMAC-SHA256 over
// the raw body using the shop's API secret.
type ghtkWebhook struct {
	PartnerID string `json:"partner_id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status_id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ValidateWebhook recomputes the HMAC-SHA256 over body and compares in
// constant time; an invalid signature is a hard rejection before any state
// read.
func (p *GHTK) ValidateWebhook(signature string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(p.creds.APISecret))
	mac.Write(body)
	expected := fmt.Sprintf("%x", mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseWebhookPayload normalizes the carrier's raw status token via the
// shared status mapper.
func (p *GHTK) ParseWebhookPayload(body []byte) (shipping.WebhookPayload, error) {
	var raw ghtkWebhook

	if err := json.Unmarshal(body, &raw); err != nil {
		return shipping.WebhookPayload{}, domain.Wrap(domain.ErrValidation, "ghtk: malformed webhook body", err)
	}

	status, _ := ghtkStatusMapper.Map(raw.Status)

	return shipping.WebhookPayload{
		ProviderOrderID: raw.OrderID,
		TrackingNumber:  raw.PartnerID,
		Status:          status,
		ProviderStatus:  raw.Status,
		Message:         raw.Message,
		At:              time.Unix(raw.Timestamp, 0).UTC(),
		Raw:             map[string]any{"partner_id": raw.PartnerID, "order_id": raw.OrderID, "status_id": raw.Status},
	}, nil
}

func (p *GHTK) TestConnection(_ context.Context) error {
	return domain.Wrap(domain.ErrProviderError, "ghtk: test connection unavailable", nil)
}

func (p *GHTK) Refund(_ context.Context, _ string, _ decimal.Decimal) error {
	return domain.Wrap(domain.ErrProviderError, "ghtk: refund unavailable", nil)
}
