// Package facade implements the Shipping Provider Facade: the
// provider-agnostic surface the rest of the core calls instead of talking to
// carriers directly. It owns the registry lookup, per-shop credential
// decryption, fee-quote caching, the 2-minute tracking snapshot cache
// served as a stale fallback when the provider fails, and webhook signature
// validation.
//
// This is a cross-cutting application service rather than a single
// CQRS command, so (unlike the other internal/usecases/* packages) it is
// exposed as one object with one method per operation.
package facade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain"
	"github.com/shortlink-org/shop/oms/internal/domain/ports"
	"github.com/shortlink-org/shop/oms/internal/domain/shipping"
)

const (
	feeCacheTTL      = 5 * time.Minute
	trackingCacheTTL = 2 * time.Minute
)

// Facade is the unified interface over heterogeneous shipping providers.
type Facade struct {
	log            logger.Logger
	registry       *shipping.Registry
	providerConfig ports.ProviderConfigRepository
	vault          ports.CredentialVault
	cache          ports.Cache
	retrier        ports.Retrier
}

// New creates a Facade.
func New(log logger.Logger, registry *shipping.Registry, providerConfig ports.ProviderConfigRepository, vault ports.CredentialVault, cache ports.Cache, retrier ports.Retrier) *Facade {
	return &Facade{log: log, registry: registry, providerConfig: providerConfig, vault: vault, cache: cache, retrier: retrier}
}

// buildProvider decrypts shopID's credentials for code and constructs the
// concrete ShippingProvider instance via the registry.
func (f *Facade) buildProvider(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode) (shipping.ShippingProvider, error) {
	cfg, err := f.providerConfig.Get(ctx, shopID, code)
	if err != nil {
		return nil, err
	}

	if !cfg.IsEnabled {
		return nil, domain.Wrap(domain.ErrProviderNotConfigured, string(code), nil)
	}

	plaintext, err := f.vault.Decrypt(cfg.EncryptedCredentials)
	if err != nil {
		return nil, domain.Wrap(domain.ErrProviderError, "decrypt credentials", err)
	}

	var creds shipping.Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, domain.Wrap(domain.ErrProviderError, "unmarshal credentials", err)
	}

	creds.ProviderCode = code
	creds.Sandbox = cfg.Sandbox

	return f.registry.Build(code, creds)
}

// isRetryable is the retry filter: signature-invalid, 4xx client
// errors, and validation errors terminate immediately; everything else
// (network, 5xx, provider-declared retryable) is retried.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidationError, domain.KindInvalidSignature, domain.KindInvalidProvider:
			return false
		}
	}

	return true
}

// CalculateFee asks every provider the shop has enabled, in parallel, with
// per-provider retry, and caches successful quotes for 5 minutes. Failures
// are returned alongside successes, never as a Go error from this call, so
// the caller can render partial options. If no provider succeeds, the
// in-house provider is called as an explicit fallback and its quote is
// tagged Fallback:true.
func (f *Facade) CalculateFee(ctx context.Context, req shipping.FeeRequest) ([]shipping.FeeQuote, error) {
	cfgs, err := f.providerConfig.EnabledForShop(ctx, req.ShopID)
	if err != nil {
		return nil, domain.MapInfraErr("list enabled providers", err)
	}

	quotes := f.fanOutFees(ctx, req, cfgs)

	anySuccess := false

	for _, q := range quotes {
		if q.Err == nil {
			anySuccess = true
			break
		}
	}

	if !anySuccess {
		fallback := f.calculateOneFee(ctx, req, shipping.ProviderInHouse)
		fallback.Fallback = true
		quotes = append(quotes, fallback)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].Err != nil {
			return false
		}

		if quotes[j].Err != nil {
			return true
		}

		return quotes[i].FeeVND.LessThan(quotes[j].FeeVND)
	})

	return quotes, nil
}

func (f *Facade) fanOutFees(ctx context.Context, req shipping.FeeRequest, cfgs []shipping.ProviderConfig) []shipping.FeeQuote {
	quotes := make([]shipping.FeeQuote, len(cfgs))

	var wg sync.WaitGroup

	for i, cfg := range cfgs {
		wg.Add(1)

		go func(i int, code shipping.ProviderCode) {
			defer wg.Done()

			quotes[i] = f.calculateOneFee(ctx, req, code)
		}(i, cfg.ProviderCode)
	}

	wg.Wait()

	return quotes
}

func (f *Facade) calculateOneFee(ctx context.Context, req shipping.FeeRequest, code shipping.ProviderCode) shipping.FeeQuote {
	key := shipping.FeeCacheKey(req.ShopID, code, req.Pickup.CityDistrict(), req.Delivery.CityDistrict(), req.Items.WeightGrams)

	if raw, ok, err := f.cache.Get(ctx, key); err == nil && ok {
		var cached decimal.Decimal
		if err := json.Unmarshal(raw, &cached); err == nil {
			return shipping.FeeQuote{ProviderCode: code, FeeVND: cached}
		}
	}

	provider, err := f.buildProvider(ctx, req.ShopID, code)
	if err != nil {
		return shipping.FeeQuote{ProviderCode: code, Err: err}
	}

	var fee decimal.Decimal

	err = f.retrier.Do(ctx, func(ctx context.Context) error {
		var opErr error
		fee, opErr = provider.CalculateFee(ctx, req)
		return opErr
	}, isRetryable)

	if err != nil {
		return shipping.FeeQuote{ProviderCode: code, Err: domain.Wrap(domain.ErrProviderError, string(code), err)}
	}

	if raw, err := json.Marshal(fee); err == nil {
		_ = f.cache.Set(ctx, key, raw, feeCacheTTL)
	}

	return shipping.FeeQuote{ProviderCode: code, FeeVND: fee}
}

// CreateOrder asks the provider for shopID to book a shipment. A provider
// that violates the non-empty tracking-number contract fails the call with
// domain.ErrMissingTracking.
func (f *Facade) CreateOrder(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode, req shipping.CreateOrderRequest) (shipping.CreateOrderResult, error) {
	provider, err := f.buildProvider(ctx, shopID, code)
	if err != nil {
		return shipping.CreateOrderResult{}, err
	}

	var result shipping.CreateOrderResult

	err = f.retrier.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = provider.CreateOrder(ctx, req)
		return opErr
	}, isRetryable)

	if err != nil {
		return shipping.CreateOrderResult{}, domain.Wrap(domain.ErrProviderError, string(code), err)
	}

	if result.TrackingNumber == "" {
		return shipping.CreateOrderResult{}, domain.Wrap(domain.ErrMissingTracking, string(code), nil)
	}

	return result, nil
}

// CancelOrder asks the provider to cancel a previously created shipment.
func (f *Facade) CancelOrder(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode, providerOrderID string) error {
	provider, err := f.buildProvider(ctx, shopID, code)
	if err != nil {
		return err
	}

	err = f.retrier.Do(ctx, func(ctx context.Context) error {
		return provider.CancelOrder(ctx, providerOrderID)
	}, isRetryable)

	if err != nil {
		return domain.Wrap(domain.ErrProviderError, string(code), err)
	}

	return nil
}

// Refund asks the provider to refund a cancelled, already-paid non-COD
// order.
func (f *Facade) Refund(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode, providerOrderID string, amountVND decimal.Decimal) error {
	provider, err := f.buildProvider(ctx, shopID, code)
	if err != nil {
		return err
	}

	err = f.retrier.Do(ctx, func(ctx context.Context) error {
		return provider.Refund(ctx, providerOrderID, amountVND)
	}, isRetryable)

	if err != nil {
		return domain.Wrap(domain.ErrProviderError, string(code), err)
	}

	return nil
}

// GetTracking always asks the provider first and keeps a 2-minute snapshot
// cache keyed by tracking number as the degraded path: on provider failure,
// a prior cached snapshot is returned with Stale:true and the failure
// attached instead of an error. Terminal statuses are never cached, so the
// terminal observation is never overwritten by a stale snapshot.
func (f *Facade) GetTracking(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode, trackingNumber string) (shipping.TrackingResult, error) {
	key := trackingCacheKey(code, trackingNumber)

	provider, err := f.buildProvider(ctx, shopID, code)
	if err != nil {
		return shipping.TrackingResult{}, err
	}

	var result shipping.TrackingResult

	err = f.retrier.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = provider.GetTracking(ctx, trackingNumber)
		return opErr
	}, isRetryable)

	if err != nil {
		if raw, ok, cacheErr := f.cache.Get(ctx, key); cacheErr == nil && ok {
			var stale shipping.TrackingResult
			if json.Unmarshal(raw, &stale) == nil {
				stale.Stale = true
				stale.Err = err

				return stale, nil
			}
		}

		return shipping.TrackingResult{}, domain.Wrap(domain.ErrProviderError, string(code), err)
	}

	if !shipping.IsTerminal(result.Status) {
		if raw, err := json.Marshal(result); err == nil {
			_ = f.cache.Set(ctx, key, raw, trackingCacheTTL)
		}
	}

	return result, nil
}

func trackingCacheKey(code shipping.ProviderCode, trackingNumber string) string {
	return fmt.Sprintf("tracking:%s:%s", code, trackingNumber)
}

// ValidateAndParseWebhook validates the signature of an inbound webhook for
// shopID/code and, only if valid, parses and normalizes the payload. An
// invalid signature is a hard rejection with no further processing. The
// tracking cache for the asserted tracking number is invalidated so the
// next GetTracking reflects the webhook-asserted truth.
func (f *Facade) ValidateAndParseWebhook(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode, signature string, body []byte) (shipping.WebhookPayload, error) {
	provider, err := f.buildProvider(ctx, shopID, code)
	if err != nil {
		return shipping.WebhookPayload{}, err
	}

	if !provider.ValidateWebhook(signature, body) {
		return shipping.WebhookPayload{}, domain.Wrap(domain.ErrInvalidSignature, string(code), nil)
	}

	payload, err := provider.ParseWebhookPayload(body)
	if err != nil {
		return shipping.WebhookPayload{}, domain.Wrap(domain.ErrValidation, "parse webhook payload", err)
	}

	if payload.TrackingNumber != "" {
		_ = f.cache.Del(ctx, trackingCacheKey(code, payload.TrackingNumber))
	}

	return payload, nil
}

// TestConnection verifies shopID's credentials for code are usable.
func (f *Facade) TestConnection(ctx context.Context, shopID uuid.UUID, code shipping.ProviderCode) error {
	provider, err := f.buildProvider(ctx, shopID, code)
	if err != nil {
		return err
	}

	return provider.TestConnection(ctx)
}
