package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow is a sliding window limiter backed by Redis sorted sets.
type SlidingWindow struct {
	Client redis.UniversalClient
	Prefix string
	Window time.Duration
	Max    int
	Now    func() time.Time
}

// Take registers an event for key and reports whether it fits within the window.
func (l SlidingWindow) Take(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	until := now.Add(l.Window)
	if l.Client == nil || l.Max <= 0 || l.Window <= 0 {
		return Decision{Allowed: true, Limit: l.Max, Remaining: l.Max, ResetAt: until}, nil
	}

	redisKey := l.Prefix + key
	cutoff := float64(now.Add(-l.Window).UnixNano())

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: key + ":" + uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Limit: l.Max, ResetAt: until}, err
	}

	current := int(countCmd.Val())
	remaining := l.Max - current
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: current <= l.Max, Limit: l.Max, Remaining: remaining, ResetAt: until}, nil
}
