package ports

import "context"

// Retrier is the retry driver: up to MaxAttempts total invocations
// with exponential backoff, aborting immediately on ctx cancellation and on
// any error for which Retryable returns false.
type Retrier interface {
	Do(ctx context.Context, op func(ctx context.Context) error, retryable func(error) bool) error
}
