package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/common"
)

func TestIdemRejectsReplay(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	handler := common.Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(userID, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/me/vouchers/claim", nil)
		req.Header.Set("Idempotency-Key", key)
		req = req.WithContext(common.WithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusCreated, send("u1", "abc"))
	require.Equal(t, http.StatusConflict, send("u1", "abc"))
	require.Equal(t, http.StatusCreated, send("u2", "abc"))
	require.Equal(t, 2, calls)

	mr.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusCreated, send("u1", "abc"))
}

func TestIdemPassThroughWithoutHeader(t *testing.T) {
	calls := 0
	handler := common.Idem{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}
	require.Equal(t, 2, calls)
}

func TestRolesOnContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := common.WithRoles(req.Context(), []string{"admin"})
	require.True(t, common.HasRole(ctx, "admin"))
	require.False(t, common.HasRole(ctx, "staff"))
	require.False(t, common.HasRole(req.Context(), "admin"))
}
