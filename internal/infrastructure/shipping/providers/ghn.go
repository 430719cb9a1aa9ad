package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// GHN is the second external carrier adapter. Its webhook identifies the
// shipment by label id and carries a numeric status id.
type GHN struct {
	creds shipping.Credentials
}

// ghnStatusMapper translates GHN's numeric status ids into the unified set.
var ghnStatusMapper = shipping.StatusMapper{
	"-1": shipping.StatusCancelled,
	"1":  shipping.StatusCreated,
	"2":  shipping.StatusPickedUp,
	"3":  shipping.StatusDelivering,
	"4":  shipping.StatusDelivered,
	"5":  shipping.StatusFailed,
	"6":  shipping.StatusReturning,
	"7":  shipping.StatusReturned,
}

// NewGHN is a shipping.Constructor.
func NewGHN(creds shipping.Credentials) (shipping.ShippingProvider, error) {
	if creds.APISecret == "" {
		return nil, domain.Wrap(domain.ErrProviderError, "ghn: missing api secret", nil)
	}

	return &GHN{creds: creds}, nil
}

func (p *GHN) Code() shipping.ProviderCode { return shipping.ProviderGHN }

// CalculateFee uses a flat estimate plus a per-kilogram rate, wired into the
// aggregator's fan-out and cache exactly like every other provider.
func (p *GHN) CalculateFee(_ context.Context, req shipping.FeeRequest) (decimal.Decimal, error) {
	kg := decimal.NewFromInt(int64(req.Items.WeightGrams)).Div(decimal.NewFromInt(1000))
	fee := decimal.NewFromInt(18_500).Add(kg.Mul(decimal.NewFromInt(6_500)))

	return fee, nil
}

func (p *GHN) CreateOrder(_ context.Context, _ shipping.CreateOrderRequest) (shipping.CreateOrderResult, error) {
	return shipping.CreateOrderResult{}, domain.Wrap(domain.ErrProviderError, "ghn: create order unavailable", nil)
}

func (p *GHN) CancelOrder(_ context.Context, _ string) error {
	return domain.Wrap(domain.ErrProviderError, "ghn: cancel order unavailable", nil)
}

func (p *GHN) GetTracking(_ context.Context, _ string) (shipping.TrackingResult, error) {
	return shipping.TrackingResult{}, domain.Wrap(domain.ErrProviderError, "ghn: tracking unavailable", nil)
}

// ghnWebhook mirrors GHN's documented webhook shape: the shipment's label
// id, a numeric status id, and a unix timestamp.
type ghnWebhook struct {
	LabelID   string `json:"label_id"`
	StatusID  int    `json:"status_id"`
	Note      string `json:"note"`
	Timestamp int64  `json:"timestamp"`
}

// ValidateWebhook recomputes the HMAC-SHA256 over body and compares in
// constant time.
func (p *GHN) ValidateWebhook(signature string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(p.creds.APISecret))
	mac.Write(body)
	expected := fmt.Sprintf("%x", mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseWebhookPayload maps the numeric status id through the shared status
// mapper; an unrecognized id normalizes to `created`, never an error.
func (p *GHN) ParseWebhookPayload(body []byte) (shipping.WebhookPayload, error) {
	var raw ghnWebhook

	if err := json.Unmarshal(body, &raw); err != nil {
		return shipping.WebhookPayload{}, domain.Wrap(domain.ErrValidation, "ghn: malformed webhook body", err)
	}

	token := strconv.Itoa(raw.StatusID)
	status, _ := ghnStatusMapper.Map(token)

	return shipping.WebhookPayload{
		ProviderOrderID: raw.LabelID,
		TrackingNumber:  raw.LabelID,
		Status:          status,
		ProviderStatus:  token,
		Message:         raw.Note,
		At:              time.Unix(raw.Timestamp, 0).UTC(),
		Raw:             map[string]any{"label_id": raw.LabelID, "status_id": raw.StatusID},
	}, nil
}

func (p *GHN) TestConnection(_ context.Context) error {
	return domain.Wrap(domain.ErrProviderError, "ghn: test connection unavailable", nil)
}

func (p *GHN) Refund(_ context.Context, _ string, _ decimal.Decimal) error {
	return domain.Wrap(domain.ErrProviderError, "ghn: refund unavailable", nil)
}
