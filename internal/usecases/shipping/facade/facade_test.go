package facade

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

// mockLogger is a simple mock for the logger interface
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...slog.Attr)                                 {}
func (m *mockLogger) Info(msg string, args ...slog.Attr)                                  {}
func (m *mockLogger) Warn(msg string, args ...slog.Attr)                                  {}
func (m *mockLogger) Error(msg string, args ...slog.Attr)                                 {}
func (m *mockLogger) DebugWithContext(ctx context.Context, msg string, args ...slog.Attr) {}
func (m *mockLogger) InfoWithContext(ctx context.Context, msg string, args ...slog.Attr)  {}
func (m *mockLogger) WarnWithContext(ctx context.Context, msg string, args ...slog.Attr)  {}
func (m *mockLogger) ErrorWithContext(ctx context.Context, msg string, args ...slog.Attr) {}
func (m *mockLogger) Close() error                                                        { return nil }

// fakeCache is a map-backed ports.Cache (TTLs ignored; tests drive
// presence/absence explicitly via Del).
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	dels []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.data[key]

	return val, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value

	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	c.dels = append(c.dels, key)

	return nil
}

func (c *fakeCache) Incr(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, nil
}

// fakeRetrier drives up to 3 attempts without the backoff sleeps.
type fakeRetrier struct{}

func (fakeRetrier) Do(ctx context.Context, op func(ctx context.Context) error, retryable func(error) bool) error {
	var err error

	for range 3 {
		err = op(ctx)
		if err == nil || (retryable != nil && !retryable(err)) {
			return err
		}
	}

	return err
}

// fakeVault passes credential blobs through untouched.
type fakeVault struct{}

func (fakeVault) Encrypt(plaintext []byte) ([]byte, error)  { return plaintext, nil }
func (fakeVault) Decrypt(ciphertext []byte) ([]byte, error) { return ciphertext, nil }

// fakeConfigs is a map-backed ports.ProviderConfigRepository.
type fakeConfigs struct {
	rows map[shipping.ProviderCode]shipping.ProviderConfig
}

func (f *fakeConfigs) Get(_ context.Context, _ uuid.UUID, code shipping.ProviderCode) (shipping.ProviderConfig, error) {
	row, ok := f.rows[code]
	if !ok {
		return shipping.ProviderConfig{}, domain.Wrap(domain.ErrProviderNotConfigured, string(code), nil)
	}

	return row, nil
}

func (f *fakeConfigs) EnabledForShop(_ context.Context, _ uuid.UUID) ([]shipping.ProviderConfig, error) {
	out := make([]shipping.ProviderConfig, 0, len(f.rows))

	for _, row := range f.rows {
		if row.IsEnabled && row.ProviderCode != shipping.ProviderInHouse {
			out = append(out, row)
		}
	}

	return out, nil
}

func (f *fakeConfigs) Upsert(_ context.Context, cfg shipping.ProviderConfig) error {
	f.rows[cfg.ProviderCode] = cfg

	return nil
}

// fakeProvider is a scriptable shipping.ShippingProvider.
type fakeProvider struct {
	code shipping.ProviderCode

	fee      decimal.Decimal
	feeErr   error
	feeCalls int

	trackingResult shipping.TrackingResult
	trackingErr    error
	trackingCalls  int

	createResult shipping.CreateOrderResult
	createErr    error

	validSignature string
	payload        shipping.WebhookPayload
}

func (p *fakeProvider) Code() shipping.ProviderCode { return p.code }

func (p *fakeProvider) CalculateFee(_ context.Context, _ shipping.FeeRequest) (decimal.Decimal, error) {
	p.feeCalls++

	return p.fee, p.feeErr
}

func (p *fakeProvider) CreateOrder(_ context.Context, _ shipping.CreateOrderRequest) (shipping.CreateOrderResult, error) {
	return p.createResult, p.createErr
}

func (p *fakeProvider) CancelOrder(_ context.Context, _ string) error { return nil }

func (p *fakeProvider) GetTracking(_ context.Context, _ string) (shipping.TrackingResult, error) {
	p.trackingCalls++

	return p.trackingResult, p.trackingErr
}

func (p *fakeProvider) ValidateWebhook(signature string, _ []byte) bool {
	return signature == p.validSignature
}

func (p *fakeProvider) ParseWebhookPayload(_ []byte) (shipping.WebhookPayload, error) {
	return p.payload, nil
}

func (p *fakeProvider) TestConnection(_ context.Context) error { return nil }

func (p *fakeProvider) Refund(_ context.Context, _ string, _ decimal.Decimal) error { return nil }

func configRow(code shipping.ProviderCode) shipping.ProviderConfig {
	return shipping.ProviderConfig{
		ProviderCode:         code,
		EncryptedCredentials: []byte(`{"api_key":"k","api_secret":"s"}`),
		IsEnabled:            true,
	}
}

func newTestFacade(t *testing.T, providers map[shipping.ProviderCode]*fakeProvider) (*Facade, *fakeCache) {
	t.Helper()

	registry := shipping.NewRegistry()
	configs := &fakeConfigs{rows: make(map[shipping.ProviderCode]shipping.ProviderConfig)}

	for code, provider := range providers {
		p := provider

		registry.Register(code, func(_ shipping.Credentials) (shipping.ShippingProvider, error) {
			return p, nil
		})
		configs.rows[code] = configRow(code)
	}

	cache := newFakeCache()

	return New(&mockLogger{}, registry, configs, fakeVault{}, cache, fakeRetrier{}), cache
}

func feeRequest() shipping.FeeRequest {
	return shipping.FeeRequest{
		ShopID: uuid.New(),
		Items:  shipping.Package{WeightGrams: 1000},
	}
}

func TestCalculateFee_PartialFailureReturnedAlongsideSuccess(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, fee: decimal.NewFromInt(30_000)}
	ghn := &fakeProvider{code: shipping.ProviderGHN, feeErr: errors.New("timeout")}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
		shipping.ProviderGHN:  ghn,
	})

	quotes, err := f.CalculateFee(context.Background(), feeRequest())
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// Successes sort before failures.
	require.NoError(t, quotes[0].Err)
	require.Equal(t, shipping.ProviderGHTK, quotes[0].ProviderCode)
	require.Error(t, quotes[1].Err)
}

func TestCalculateFee_SortedAscending(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, fee: decimal.NewFromInt(30_000)}
	ghn := &fakeProvider{code: shipping.ProviderGHN, fee: decimal.NewFromInt(18_000)}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
		shipping.ProviderGHN:  ghn,
	})

	quotes, err := f.CalculateFee(context.Background(), feeRequest())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.Equal(t, shipping.ProviderGHN, quotes[0].ProviderCode)
	require.Equal(t, shipping.ProviderGHTK, quotes[1].ProviderCode)
}

func TestCalculateFee_CacheHitBypassesProvider(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, fee: decimal.NewFromInt(30_000)}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	req := feeRequest()

	_, err := f.CalculateFee(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, ghtk.feeCalls)

	_, err = f.CalculateFee(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, ghtk.feeCalls)
}

func TestCalculateFee_InHouseFallbackWhenAllFail(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, feeErr: errors.New("down")}
	inhouse := &fakeProvider{code: shipping.ProviderInHouse, fee: decimal.NewFromInt(20_000)}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK:    ghtk,
		shipping.ProviderInHouse: inhouse,
	})

	quotes, err := f.CalculateFee(context.Background(), feeRequest())
	require.NoError(t, err)

	var fallback *shipping.FeeQuote

	for i := range quotes {
		if quotes[i].Fallback {
			fallback = &quotes[i]
		}
	}

	require.NotNil(t, fallback)
	require.Equal(t, shipping.ProviderInHouse, fallback.ProviderCode)
	require.NoError(t, fallback.Err)
}

func TestCreateOrder_MissingTrackingRejected(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, createResult: shipping.CreateOrderResult{TrackingNumber: ""}}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	_, err := f.CreateOrder(context.Background(), uuid.New(), shipping.ProviderGHTK, shipping.CreateOrderRequest{})
	require.ErrorIs(t, err, domain.ErrMissingTracking)
}

func TestGetTracking_StaleCacheOnProviderFailure(t *testing.T) {
	ghtk := &fakeProvider{
		code:           shipping.ProviderGHTK,
		trackingResult: shipping.TrackingResult{Status: shipping.StatusDelivering},
	}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	shopID := uuid.New()

	first, err := f.GetTracking(context.Background(), shopID, shipping.ProviderGHTK, "TRK-9")
	require.NoError(t, err)
	require.Equal(t, shipping.StatusDelivering, first.Status)
	require.False(t, first.Stale)

	// Provider goes down; cached snapshot is 90s old in the scenario.
	ghtk.trackingErr = errors.New("provider timeout")

	stale, err := f.GetTracking(context.Background(), shopID, shipping.ProviderGHTK, "TRK-9")
	require.NoError(t, err)
	require.True(t, stale.Stale)
	require.Equal(t, shipping.StatusDelivering, stale.Status)
	require.Error(t, stale.Err)
}

func TestGetTracking_TerminalStatusNotCached(t *testing.T) {
	ghtk := &fakeProvider{
		code:           shipping.ProviderGHTK,
		trackingResult: shipping.TrackingResult{Status: shipping.StatusDelivered},
	}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	shopID := uuid.New()

	_, err := f.GetTracking(context.Background(), shopID, shipping.ProviderGHTK, "TRK-1")
	require.NoError(t, err)

	// The terminal observation was never written to the cache, so a later
	// provider failure has no stale snapshot to degrade to.
	ghtk.trackingErr = errors.New("down")

	_, err = f.GetTracking(context.Background(), shopID, shipping.ProviderGHTK, "TRK-1")
	require.ErrorIs(t, err, domain.ErrProviderError)
}

func TestGetTracking_NoCacheNoFallbackPropagatesProviderError(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, trackingErr: errors.New("down")}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	_, err := f.GetTracking(context.Background(), uuid.New(), shipping.ProviderGHTK, "TRK-2")
	require.ErrorIs(t, err, domain.ErrProviderError)
}

func TestValidateAndParseWebhook_InvalidSignatureHardReject(t *testing.T) {
	ghtk := &fakeProvider{code: shipping.ProviderGHTK, validSignature: "good"}

	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	_, err := f.ValidateAndParseWebhook(context.Background(), uuid.New(), shipping.ProviderGHTK, "bad", []byte(`{}`))
	require.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestValidateAndParseWebhook_InvalidatesTrackingCache(t *testing.T) {
	ghtk := &fakeProvider{
		code:           shipping.ProviderGHTK,
		validSignature: "good",
		payload:        shipping.WebhookPayload{TrackingNumber: "TRK-9", Status: shipping.StatusDelivered},
		trackingResult: shipping.TrackingResult{Status: shipping.StatusDelivering},
	}

	f, cache := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{
		shipping.ProviderGHTK: ghtk,
	})

	shopID := uuid.New()

	// Prime the tracking cache.
	_, err := f.GetTracking(context.Background(), shopID, shipping.ProviderGHTK, "TRK-9")
	require.NoError(t, err)

	payload, err := f.ValidateAndParseWebhook(context.Background(), shopID, shipping.ProviderGHTK, "good", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, shipping.StatusDelivered, payload.Status)
	require.Contains(t, cache.dels, "tracking:ghtk:TRK-9")

	// With the snapshot invalidated, a provider outage has no stale
	// fallback left to serve.
	ghtk.trackingErr = errors.New("down")

	_, err = f.GetTracking(context.Background(), shopID, shipping.ProviderGHTK, "TRK-9")
	require.ErrorIs(t, err, domain.ErrProviderError)
}

func TestProviderNotConfigured(t *testing.T) {
	f, _ := newTestFacade(t, map[shipping.ProviderCode]*fakeProvider{})

	_, err := f.CreateOrder(context.Background(), uuid.New(), shipping.ProviderGHTK, shipping.CreateOrderRequest{})
	require.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}
