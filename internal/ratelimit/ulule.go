package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewRedisStore returns a ulule limiter store sharing the application's Redis client.
func NewRedisStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: prefix})
}

// Fixed is a fixed window Policy backed by ulule/limiter.
type Fixed struct {
	Limiter *limiter.Limiter
}

// NewFixed builds a Policy from a formatted rate such as "10-M" or "1000-H".
func NewFixed(store limiter.Store, formatted string) (Fixed, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return Fixed{}, fmt.Errorf("ratelimit: parse rate %q: %w", formatted, err)
	}
	return Fixed{Limiter: limiter.New(store, rate)}, nil
}

// Take implements Policy.
func (f Fixed) Take(ctx context.Context, key string) (Decision, error) {
	if f.Limiter == nil {
		return Decision{Allowed: true}, nil
	}
	lctx, err := f.Limiter.Get(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Allowed:   !lctx.Reached,
		Limit:     int(lctx.Limit),
		Remaining: int(lctx.Remaining),
		ResetAt:   time.Unix(lctx.Reset, 0),
	}, nil
}
