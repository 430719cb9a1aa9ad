package shipping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

func TestPriority_FixedRanks(t *testing.T) {
	expected := map[UnifiedStatus]int{
		StatusCreated:    1,
		StatusAssigned:   2,
		StatusPickedUp:   3,
		StatusDelivering: 4,
		StatusDelivered:  5,
		StatusFailed:     6,
		StatusReturning:  7,
		StatusReturned:   8,
		StatusCancelled:  9,
	}

	for status, rank := range expected {
		require.Equal(t, rank, Priority(status))
	}

	require.Zero(t, Priority(UnifiedStatus("bogus")))
}

func TestIsTerminal_IsSuccess(t *testing.T) {
	require.True(t, IsTerminal(StatusDelivered))
	require.True(t, IsTerminal(StatusReturned))
	require.True(t, IsTerminal(StatusCancelled))

	require.False(t, IsTerminal(StatusDelivering))
	require.False(t, IsTerminal(StatusFailed))
	require.False(t, IsTerminal(StatusReturning))

	require.True(t, IsSuccess(StatusDelivered))
	require.False(t, IsSuccess(StatusReturned))

	// Success and failure predicates are mutually exclusive: only
	// delivered is a success, and delivered is never a failure branch.
	for _, s := range []UnifiedStatus{StatusCreated, StatusAssigned, StatusPickedUp, StatusDelivering, StatusFailed, StatusReturning, StatusReturned, StatusCancelled} {
		require.False(t, IsSuccess(s))
	}
}

func TestReconcile_LaterWebhookWithLowerPriorityDoesNotDowngrade(t *testing.T) {
	// A stray `delivering` (4) arriving after `delivered` (5) must not
	// downgrade the stored status.
	next, applied := Reconcile(StatusDelivered, StatusDelivering)

	require.False(t, applied)
	require.Equal(t, StatusDelivered, next)
}

func TestReconcile_HigherOrEqualPriorityWins(t *testing.T) {
	next, applied := Reconcile(StatusDelivering, StatusDelivered)
	require.True(t, applied)
	require.Equal(t, StatusDelivered, next)

	// Equal priority re-applies (idempotent webhook replay).
	next, applied = Reconcile(StatusDelivered, StatusDelivered)
	require.True(t, applied)
	require.Equal(t, StatusDelivered, next)
}

func TestStatusMapper_UnknownTokenDefaultsToCreated(t *testing.T) {
	mapper := StatusMapper{"5": StatusDelivered}

	status, known := mapper.Map("5")
	require.True(t, known)
	require.Equal(t, StatusDelivered, status)

	status, known = mapper.Map("999")
	require.False(t, known)
	require.Equal(t, StatusCreated, status)
}

func TestStatusMapper_AllMappedTokensAreValidUnifiedStatuses(t *testing.T) {
	mapper := StatusMapper{
		"a": StatusCreated, "b": StatusAssigned, "c": StatusPickedUp,
		"d": StatusDelivering, "e": StatusDelivered, "f": StatusFailed,
		"g": StatusReturning, "h": StatusReturned, "i": StatusCancelled,
	}

	for token := range mapper {
		status, _ := mapper.Map(token)
		require.True(t, Valid(status))
	}
}

func TestFeeCacheKey_ReferentiallyTransparentAndDistinguishing(t *testing.T) {
	shopID := uuid.New()

	key := FeeCacheKey(shopID, ProviderGHTK, "HCM-Q1", "HN-BD", 1200)

	require.Equal(t, key, FeeCacheKey(shopID, ProviderGHTK, "HCM-Q1", "HN-BD", 1200))

	// Each of the five dimensions must change the key.
	require.NotEqual(t, key, FeeCacheKey(uuid.New(), ProviderGHTK, "HCM-Q1", "HN-BD", 1200))
	require.NotEqual(t, key, FeeCacheKey(shopID, ProviderGHN, "HCM-Q1", "HN-BD", 1200))
	require.NotEqual(t, key, FeeCacheKey(shopID, ProviderGHTK, "HCM-Q3", "HN-BD", 1200))
	require.NotEqual(t, key, FeeCacheKey(shopID, ProviderGHTK, "HCM-Q1", "DN-HC", 1200))
	require.NotEqual(t, key, FeeCacheKey(shopID, ProviderGHTK, "HCM-Q1", "HN-BD", 1500))
}

func TestFeeCacheKey_CaseInsensitiveProviderCode(t *testing.T) {
	shopID := uuid.New()

	require.Equal(t,
		FeeCacheKey(shopID, "GHTK", "a", "b", 1),
		FeeCacheKey(shopID, "ghtk", "a", "b", 1),
	)
}

func TestRegistry_CaseInsensitiveLookup(t *testing.T) {
	registry := NewRegistry()
	registry.Register("GHTK", func(creds Credentials) (ShippingProvider, error) {
		return nil, nil
	})

	_, err := registry.Build("ghtk", Credentials{})
	require.NoError(t, err)

	_, err = registry.Build("Ghtk", Credentials{})
	require.NoError(t, err)
}

func TestRegistry_UnknownCodeFailsWithInvalidProvider(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Build("nosuch", Credentials{})
	require.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestRegistry_ConstructorFailureFailsWithProviderError(t *testing.T) {
	registry := NewRegistry()
	registry.Register("broken", func(creds Credentials) (ShippingProvider, error) {
		return nil, domain.Wrap(domain.ErrValidation, "bad creds", nil)
	})

	_, err := registry.Build("broken", Credentials{})
	require.ErrorIs(t, err, domain.ErrProviderError)
}
