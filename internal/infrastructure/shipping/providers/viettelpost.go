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

// ViettelPost is the third external carrier adapter. Its webhook uses
// three-digit string status codes and identifies the shipment by its own
// order number.
type ViettelPost struct {
	creds shipping.Credentials
}

// viettelStatusMapper translates ViettelPost's status codes into the
// unified set.
var viettelStatusMapper = shipping.StatusMapper{
	"100": shipping.StatusCreated,
	"104": shipping.StatusAssigned,
	"105": shipping.StatusPickedUp,
	"107": shipping.StatusCancelled,
	"200": shipping.StatusDelivering,
	"501": shipping.StatusDelivered,
	"503": shipping.StatusFailed,
	"505": shipping.StatusReturning,
	"507": shipping.StatusReturned,
}

// NewViettelPost is a shipping.Constructor.
func NewViettelPost(creds shipping.Credentials) (shipping.ShippingProvider, error) {
	if creds.APISecret == "" {
		return nil, domain.Wrap(domain.ErrProviderError, "viettelpost: missing api secret", nil)
	}

	return &ViettelPost{creds: creds}, nil
}

func (p *ViettelPost) Code() shipping.ProviderCode { return shipping.ProviderViettelPost }

func (p *ViettelPost) CalculateFee(_ context.Context, req shipping.FeeRequest) (decimal.Decimal, error) {
	kg := decimal.NewFromInt(int64(req.Items.WeightGrams)).Div(decimal.NewFromInt(1000))
	fee := decimal.NewFromInt(20_000).Add(kg.Mul(decimal.NewFromInt(6_000)))

	return fee, nil
}

func (p *ViettelPost) CreateOrder(_ context.Context, _ shipping.CreateOrderRequest) (shipping.CreateOrderResult, error) {
	return shipping.CreateOrderResult{}, domain.Wrap(domain.ErrProviderError, "viettelpost: create order unavailable", nil)
}

func (p *ViettelPost) CancelOrder(_ context.Context, _ string) error {
	return domain.Wrap(domain.ErrProviderError, "viettelpost: cancel order unavailable", nil)
}

func (p *ViettelPost) GetTracking(_ context.Context, _ string) (shipping.TrackingResult, error) {
	return shipping.TrackingResult{}, domain.Wrap(domain.ErrProviderError, "viettelpost: tracking unavailable", nil)
}

type viettelWebhook struct {
	OrderNumber string `json:"ORDER_NUMBER"`
	StatusCode  string `json:"ORDER_STATUS"`
	Note        string `json:"NOTE"`
	Timestamp   int64  `json:"ORDER_STATUSDATE"`
}

func (p *ViettelPost) ValidateWebhook(signature string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(p.creds.APISecret))
	mac.Write(body)
	expected := fmt.Sprintf("%x", mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (p *ViettelPost) ParseWebhookPayload(body []byte) (shipping.WebhookPayload, error) {
	var raw viettelWebhook

	if err := json.Unmarshal(body, &raw); err != nil {
		return shipping.WebhookPayload{}, domain.Wrap(domain.ErrValidation, "viettelpost: malformed webhook body", err)
	}

	status, _ := viettelStatusMapper.Map(raw.StatusCode)

	return shipping.WebhookPayload{
		ProviderOrderID: raw.OrderNumber,
		TrackingNumber:  raw.OrderNumber,
		Status:          status,
		ProviderStatus:  raw.StatusCode,
		Message:         raw.Note,
		At:              time.Unix(raw.Timestamp, 0).UTC(),
		Raw:             map[string]any{"ORDER_NUMBER": raw.OrderNumber, "ORDER_STATUS": raw.StatusCode},
	}, nil
}

func (p *ViettelPost) TestConnection(_ context.Context) error {
	return domain.Wrap(domain.ErrProviderError, "viettelpost: test connection unavailable", nil)
}

func (p *ViettelPost) Refund(_ context.Context, _ string, _ decimal.Decimal) error {
	return domain.Wrap(domain.ErrProviderError, "viettelpost: refund unavailable", nil)
}
