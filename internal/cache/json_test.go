package cache_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/cache"
	"github.com/noah-isme/toko-voucher/internal/resilience"
)

type entry struct {
	Code string `json:"code"`
}

func TestJSONRoundTripAndDelete(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewJSON(client, "toko", time.Minute)
	ctx := context.Background()

	var got []entry
	hit, err := c.GetJSON(ctx, "vouchers:available", &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "vouchers:available", []entry{{Code: "SAVE10"}}))
	require.True(t, mr.Exists("toko:vouchers:available"))
	require.Equal(t, time.Minute, mr.TTL("toko:vouchers:available"))

	hit, err = c.GetJSON(ctx, "vouchers:available", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []entry{{Code: "SAVE10"}}, got)

	require.NoError(t, c.Delete(ctx, "vouchers:available"))
	require.False(t, mr.Exists("toko:vouchers:available"))
}

func TestJSONCorruptEntryIsMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("k", "{not json"))
	c := cache.NewJSON(client, "", time.Minute)

	var got []entry
	hit, err := c.GetJSON(context.Background(), "k", &got)
	require.NoError(t, err)
	require.False(t, hit)
	require.False(t, mr.Exists("k"))
}

func TestJSONDisabled(t *testing.T) {
	var c *cache.JSON
	hit, err := c.GetJSON(context.Background(), "k", &[]entry{})
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.SetJSON(context.Background(), "k", 1))
	require.NoError(t, c.Delete(context.Background(), "k"))
}

func TestJSONBreakerTurnsOutageIntoMisses(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	breaker := resilience.NewBreaker("cache", 1, 0.5, time.Hour)
	c := cache.NewJSON(client, "toko", time.Minute).WithBreaker(breaker)
	ctx := context.Background()

	var got []entry
	hit, err := c.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, resilience.Closed, breaker.State())

	mr.Close()
	_, err = c.GetJSON(ctx, "vouchers:available", &got)
	require.Error(t, err)
	require.Equal(t, resilience.Open, breaker.State())

	hit, err = c.GetJSON(ctx, "vouchers:available", &got)
	require.NoError(t, err)
	require.False(t, hit)
	require.ErrorIs(t, c.SetJSON(ctx, "vouchers:available", got), resilience.ErrOpenCircuit)
}
