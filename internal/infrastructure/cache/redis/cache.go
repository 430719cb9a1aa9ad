// Package redis implements ports.Cache over rueidis, grounded on the
// cart-goods-index Redis adapter's client-wrapping style.
package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/shortlink-org/shop/oms/internal/domain"
)

// Cache implements ports.Cache.
type Cache struct {
	client rueidis.Client
}

// New wraps an already-connected rueidis client.
func New(client rueidis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the stored value, or ok=false on a cache miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())

	val, err := resp.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, false, nil
		}

		return nil, false, domain.MapInfraErr("cache get", err)
	}

	return val, true, nil
}

// Set writes value under key with a TTL; last-write-wins.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := c.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return domain.MapInfraErr("cache set", err)
	}

	return nil
}

// Del unconditionally removes key.
func (c *Cache) Del(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error(); err != nil {
		return domain.MapInfraErr("cache del", err)
	}

	return nil
}

// Incr atomically increments key, setting ttl only the first time the key is
// created within the window (INCR then EXPIRE NX), used for rate-limit
// counters.
func (c *Cache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Incr().Key(key).Build())

	val, err := resp.AsInt64()
	if err != nil {
		return 0, domain.MapInfraErr("cache incr", err)
	}

	if val == 1 {
		if err := c.client.Do(ctx, c.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build()).Error(); err != nil {
			return 0, domain.MapInfraErr("cache incr expire", err)
		}
	}

	return val, nil
}
