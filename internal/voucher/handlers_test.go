package voucher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/common"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func newTestRouter(store *memStore, userID string) http.Handler {
	svc := newTestService(store)
	h := &Handler{Svc: svc}
	ah := &AdminHandler{Admin: &Admin{Store: store, Service: svc}}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != "" {
				req = req.WithContext(common.WithUserID(req.Context(), userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/vouchers/available", h.Available)
	r.Get("/vouchers/{code}", h.Get)
	r.Post("/vouchers/validate", h.Validate)
	r.Post("/me/vouchers/claim", h.Claim)
	r.Post("/me/vouchers/redeem", h.Redeem)
	r.Get("/me/vouchers", h.Mine)
	r.Post("/me/vouchers/{voucherID}/use", h.MarkUsed)
	r.Post("/admin/vouchers", ah.Create)
	r.Get("/admin/vouchers", ah.List)
	r.Patch("/admin/vouchers/{id}/active", ah.SetActive)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateHandler(t *testing.T) {
	h := newTestRouter(newMemStore(hemat20()), "")

	rec := do(t, h, http.MethodPost, "/vouchers/validate", `{"code":"hemat20","cart_total":1000000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ok Result
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &ok))
	require.True(t, ok.Valid)
	require.Equal(t, int64(50000), *ok.Discount)

	rec = do(t, h, http.MethodPost, "/vouchers/validate", `{"code":"hemat20","cart_total":10}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var rejected Result
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &rejected))
	require.Equal(t, ReasonMinPurchase, rejected.Reason)

	rec = do(t, h, http.MethodPost, "/vouchers/validate", `{broken`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateHandlerStorageFailure(t *testing.T) {
	store := newMemStore(hemat20())
	store.findErr = context.DeadlineExceeded
	h := newTestRouter(store, "")

	rec := do(t, h, http.MethodPost, "/vouchers/validate", `{"code":"HEMAT20","cart_total":100}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "INTERNAL", env.Error.Code)
	require.Equal(t, MsgValidateFailed, env.Error.Message)
}

func TestClaimHandler(t *testing.T) {
	store := newMemStore(hemat20())

	anon := newTestRouter(store, "")
	rec := do(t, anon, http.MethodPost, "/me/vouchers/claim", `{"code":"HEMAT20"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	h := newTestRouter(store, "user-1")
	rec = do(t, h, http.MethodPost, "/me/vouchers/claim", `{"code":"HEMAT20"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/me/vouchers/claim", `{"code":"HEMAT20"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &res))
	require.Equal(t, ReasonAlreadyClaimed, res.Reason)

	rec = do(t, h, http.MethodPost, "/me/vouchers/v-hemat/use", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/me/vouchers/redeem", `{"code":"HEMAT20","cart_total":200000}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMineHandler(t *testing.T) {
	store := newMemStore(hemat20())
	h := newTestRouter(store, "user-1")
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/me/vouchers/claim", `{"code":"HEMAT20"}`).Code)

	rec := do(t, h, http.MethodGet, "/me/vouchers?status=available", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []ClaimedVoucher
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &list))
	require.Len(t, list, 1)
	require.Equal(t, "HEMAT20", list[0].Code)

	rec = do(t, h, http.MethodGet, "/me/vouchers?status=bogus", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHandler(t *testing.T) {
	h := newTestRouter(newMemStore(hemat20()), "")

	rec := do(t, h, http.MethodGet, "/vouchers/hemat20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"days_remaining":3`)

	rec = do(t, h, http.MethodGet, "/vouchers/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/vouchers/available", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "HEMAT20")
}

func TestHandlerWithoutStore(t *testing.T) {
	h := &Handler{Svc: &Service{}}
	rec := httptest.NewRecorder()
	h.Validate(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminHandlerErrors(t *testing.T) {
	store := newMemStore()
	h := newTestRouter(store, "admin-1")

	rec := do(t, h, http.MethodPost, "/admin/vouchers", `{"code":"HEMAT20","name":"Hemat","discount_type":"percentage","discount_value":150}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Equal(t, "lte_100_for_percentage", env.Error.Details["discount_value"])

	body := `{"code":"hemat20","name":"Hemat","discount_type":"percentage","discount_value":20}`
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/admin/vouchers", body).Code)
	rec = do(t, h, http.MethodPost, "/admin/vouchers", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPatch, "/admin/vouchers/missing/active", `{"is_active":false}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodPatch, "/admin/vouchers/missing/active", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/admin/vouchers?page=1&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_items":1`)
}
