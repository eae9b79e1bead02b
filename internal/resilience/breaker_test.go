package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/resilience"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func pass(context.Context) error { return nil }

func TestBreakerOpensAndRecovers(t *testing.T) {
	resilience.MustRegisterMetrics("test", prometheus.NewRegistry())
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	b := resilience.NewBreaker("redis-cache", 2, 0.5, time.Minute)
	b.Now = clk.now
	ctx := context.Background()

	require.ErrorIs(t, b.Do(ctx, fail), errBoom)
	require.ErrorIs(t, b.Do(ctx, fail), errBoom)
	require.Equal(t, resilience.Open, b.State())
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("redis-cache")))

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.False(t, called)

	clk.t = clk.t.Add(time.Minute)
	require.NoError(t, b.Do(ctx, pass))
	require.Equal(t, resilience.Closed, b.State())
	require.Equal(t, 0.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("redis-cache")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("redis-cache", "open", "half_open")))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	b := resilience.NewBreaker("probe", 1, 0.5, time.Second)
	b.Now = clk.now
	ctx := context.Background()

	require.Error(t, b.Do(ctx, fail))
	require.Equal(t, resilience.Open, b.State())

	clk.t = clk.t.Add(time.Second)
	require.ErrorIs(t, b.Do(ctx, fail), errBoom)
	require.Equal(t, resilience.Open, b.State())
	require.ErrorIs(t, b.Do(ctx, pass), resilience.ErrOpenCircuit)
}

func TestBreakerIgnoredErrorsCountAsSuccess(t *testing.T) {
	b := resilience.NewBreaker("ignore", 1, 0.5, time.Second)
	miss := errors.New("miss")
	isMiss := func(err error) bool { return errors.Is(err, miss) }

	for range 5 {
		err := b.Do(context.Background(), func(context.Context) error { return miss }, isMiss)
		require.ErrorIs(t, err, miss)
	}
	require.Equal(t, resilience.Closed, b.State())
}

func TestNilBreakerPassesThrough(t *testing.T) {
	var b *resilience.Breaker
	require.ErrorIs(t, b.Do(context.Background(), fail), errBoom)
}
