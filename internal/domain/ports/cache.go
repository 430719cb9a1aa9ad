package ports

import (
	"context"
	"time"
)

// Cache is the shared TTL'd key-value store: fee quotes,
// tracking snapshots, rate-limit counters, last-known shipper location.
// Set is last-write-wins; Del is unconditional.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// Incr atomically increments key by 1 within ttl, returning the new value;
	// used for rate-limit counters.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
