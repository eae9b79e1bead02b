package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-voucher/internal/resilience"
)

// JSON stores JSON payloads in Redis under a namespace with a fixed TTL. A zero TTL
// or nil client turns every call into a miss.
type JSON struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	breaker   *resilience.Breaker
}

// NewJSON constructs a JSON cache.
func NewJSON(client redis.UniversalClient, namespace string, ttl time.Duration) *JSON {
	return &JSON{client: client, namespace: namespace, ttl: ttl}
}

// WithBreaker guards every Redis call with b. While b is open reads are misses and writes
// return resilience.ErrOpenCircuit.
func (c *JSON) WithBreaker(b *resilience.Breaker) *JSON {
	c.breaker = b
	return c
}

func isMiss(err error) bool { return errors.Is(err, redis.Nil) }

func (c *JSON) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *JSON) key(k string) string {
	if c.namespace == "" {
		return k
	}
	return c.namespace + ":" + k
}

// GetJSON unmarshals a cached payload into dst and reports whether the key existed.
// Entries that no longer decode are evicted and reported as a miss.
func (c *JSON) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.enabled() || key == "" {
		return false, nil
	}
	var data []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) (err error) {
		data, err = c.client.Get(ctx, c.key(key)).Bytes()
		return err
	}, isMiss)
	if err != nil {
		if isMiss(err) || errors.Is(err, resilience.ErrOpenCircuit) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		_ = c.client.Del(ctx, c.key(key)).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON serialises v and stores it with the configured TTL.
func (c *JSON) SetJSON(ctx context.Context, key string, v any) error {
	if !c.enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
	})
}

// Delete evicts keys.
func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, full...).Err()
	})
}
