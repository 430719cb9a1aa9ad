// Package retrier implements ports.Retrier over cenkalti/backoff/v4: up to
// 3 attempts, each cut off after 2s, so at most 6s of provider time per
// outbound provider call; the backoff waits between attempts (from 1s,
// doubling) come on top of that.
package retrier

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxAttempts  = 3
	perAttemptCap = 2 * 1_000_000_000 // 2s, in time.Duration nanoseconds
)

// Retrier implements ports.Retrier.
type Retrier struct{}

// New creates a Retrier.
func New() *Retrier {
	return &Retrier{}
}

// Do runs op up to maxAttempts times with exponential backoff, aborting
// immediately on ctx cancellation or when retryable(err) is false.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error, retryable func(error) bool) error {
	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = 0 // bounded by MaxAttempts, not elapsed time
	eb.InitialInterval = time.Second
	eb.Multiplier = 2
	eb.MaxInterval = perAttemptCap

	bo := backoff.WithContext(backoff.WithMaxRetries(eb, maxAttempts-1), ctx)

	var lastErr error

	err := backoff.Retry(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttemptCap)
		lastErr = op(attemptCtx)
		cancel()
		if lastErr == nil {
			return nil
		}

		if retryable != nil && !retryable(lastErr) {
			return backoff.Permanent(lastErr)
		}

		return lastErr
	}, bo)

	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}

	if lastErr != nil {
		return lastErr
	}

	return err
}
