package retrier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetrier_NeverExceedsMaxAttempts(t *testing.T) {
	r := New()

	calls := 0
	transient := errors.New("network down")

	err := r.Do(context.Background(), func(_ context.Context) error {
		calls++

		return transient
	}, func(error) bool { return true })

	require.ErrorIs(t, err, transient)
	require.Equal(t, maxAttempts, calls)
}

func TestRetrier_NonRetryableTerminatesImmediately(t *testing.T) {
	r := New()

	calls := 0
	permanent := errors.New("invalid signature")

	err := r.Do(context.Background(), func(_ context.Context) error {
		calls++

		return permanent
	}, func(error) bool { return false })

	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestRetrier_SuccessAfterTransientFailure(t *testing.T) {
	r := New()

	calls := 0

	err := r.Do(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("flaky")
		}

		return nil
	}, func(error) bool { return true })

	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestRetrier_CancelledContextStopsRetries(t *testing.T) {
	r := New()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	err := r.Do(ctx, func(_ context.Context) error {
		calls++
		cancel()

		return errors.New("transient")
	}, func(error) bool { return true })

	require.Error(t, err)
	require.Equal(t, 1, calls)
}
