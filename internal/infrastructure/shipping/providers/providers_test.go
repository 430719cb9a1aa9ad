package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return fmt.Sprintf("%x", mac.Sum(nil))
}

func newTestGHN(t *testing.T, secret string) shipping.ShippingProvider {
	t.Helper()

	p, err := NewGHN(shipping.Credentials{ProviderCode: shipping.ProviderGHN, APISecret: secret})
	require.NoError(t, err)

	return p
}

func TestGHN_ValidateWebhook(t *testing.T) {
	p := newTestGHN(t, "shop-secret")

	body := []byte(`{"label_id":"LBL123","status_id":4,"timestamp":1700000000}`)

	require.True(t, p.ValidateWebhook(sign("shop-secret", body), body))
	require.False(t, p.ValidateWebhook(sign("other-secret", body), body))
	require.False(t, p.ValidateWebhook("deadbeef", body))

	// Modifying any field invalidates a previously valid signature.
	sig := sign("shop-secret", body)
	tampered := []byte(`{"label_id":"LBL123","status_id":5,"timestamp":1700000000}`)
	require.False(t, p.ValidateWebhook(sig, tampered))
}

func TestGHN_ParseWebhookPayload_NormalizesStatus(t *testing.T) {
	p := newTestGHN(t, "s")

	payload, err := p.ParseWebhookPayload([]byte(`{"label_id":"LBL123","status_id":4,"timestamp":1700000000}`))
	require.NoError(t, err)
	require.Equal(t, "LBL123", payload.TrackingNumber)
	require.Equal(t, shipping.StatusDelivered, payload.Status)
	require.Equal(t, "4", payload.ProviderStatus)

	payload, err = p.ParseWebhookPayload([]byte(`{"label_id":"LBL123","status_id":3}`))
	require.NoError(t, err)
	require.Equal(t, shipping.StatusDelivering, payload.Status)
}

func TestGHN_ParseWebhookPayload_UnknownStatusDefaultsToCreated(t *testing.T) {
	p := newTestGHN(t, "s")

	payload, err := p.ParseWebhookPayload([]byte(`{"label_id":"LBL123","status_id":99}`))
	require.NoError(t, err)
	require.Equal(t, shipping.StatusCreated, payload.Status)
}

func TestGHN_ParseWebhookPayload_MalformedBody(t *testing.T) {
	p := newTestGHN(t, "s")

	_, err := p.ParseWebhookPayload([]byte(`{`))
	require.Error(t, err)
}

func TestGHTK_ValidateWebhook(t *testing.T) {
	p, err := NewGHTK(shipping.Credentials{ProviderCode: shipping.ProviderGHTK, APISecret: "k"})
	require.NoError(t, err)

	body := []byte(`{"partner_id":"TRK-1","order_id":"G1","status_id":"5"}`)

	require.True(t, p.ValidateWebhook(sign("k", body), body))
	require.False(t, p.ValidateWebhook(sign("x", body), body))

	payload, err := p.ParseWebhookPayload(body)
	require.NoError(t, err)
	require.Equal(t, shipping.StatusDelivered, payload.Status)
	require.Equal(t, "TRK-1", payload.TrackingNumber)
}

func TestViettelPost_StatusMapping(t *testing.T) {
	p, err := NewViettelPost(shipping.Credentials{ProviderCode: shipping.ProviderViettelPost, APISecret: "k"})
	require.NoError(t, err)

	payload, err := p.ParseWebhookPayload([]byte(`{"ORDER_NUMBER":"VT-7","ORDER_STATUS":"501"}`))
	require.NoError(t, err)
	require.Equal(t, shipping.StatusDelivered, payload.Status)
	require.Equal(t, "VT-7", payload.TrackingNumber)
}

func TestExternalProviders_RequireSecret(t *testing.T) {
	_, err := NewGHTK(shipping.Credentials{})
	require.Error(t, err)

	_, err = NewGHN(shipping.Credentials{})
	require.Error(t, err)

	_, err = NewViettelPost(shipping.Credentials{})
	require.Error(t, err)
}

func TestInHouse_CreateOrderReturnsTracking(t *testing.T) {
	p, err := NewInHouse(shipping.Credentials{})
	require.NoError(t, err)

	result, err := p.CreateOrder(context.Background(), shipping.CreateOrderRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, result.TrackingNumber)
	require.NotEmpty(t, result.ProviderOrderID)
}

func TestInHouse_FeeScalesWithWeight(t *testing.T) {
	p, err := NewInHouse(shipping.Credentials{})
	require.NoError(t, err)

	light, err := p.CalculateFee(context.Background(), shipping.FeeRequest{Items: shipping.Package{WeightGrams: 500}})
	require.NoError(t, err)

	heavy, err := p.CalculateFee(context.Background(), shipping.FeeRequest{Items: shipping.Package{WeightGrams: 5000}})
	require.NoError(t, err)

	require.True(t, light.LessThan(heavy))
}
