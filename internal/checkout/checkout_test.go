package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/common"
	"github.com/noah-isme/toko-voucher/internal/pricing"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

type stubValidator struct {
	gotTotal float64
	gotUser  string
	res      voucher.Result
}

func (s *stubValidator) Validate(_ context.Context, _ string, cartTotal float64, userID string) voucher.Result {
	s.gotTotal = cartTotal
	s.gotUser = userID
	return s.res
}

func discount(v int64) *int64 { return &v }

func TestSummaryAppliesVoucherOnSubtotal(t *testing.T) {
	stub := &stubValidator{res: voucher.Result{Valid: true, Reason: voucher.ReasonOK, Discount: discount(15000)}}
	svc := &Service{Vouchers: stub}

	out, err := svc.Summary(context.Background(), "u1", Input{
		Items:          []pricing.Line{{ProductID: "p1", Qty: 3, Price: 50000}},
		DeliveryMethod: "regular",
		VoucherCode:    "save10",
	})
	require.NoError(t, err)
	require.Equal(t, 150000.0, stub.gotTotal)
	require.Equal(t, "u1", stub.gotUser)
	require.Equal(t, pricing.Money(150000), out.Subtotal)
	require.Equal(t, pricing.Money(5000), out.Delivery)
	require.Equal(t, pricing.Money(15000), out.Discount)
	require.Equal(t, pricing.Money(140000), out.Total)
	require.NotNil(t, out.Voucher)
}

func TestSummaryIgnoresRejectedVoucher(t *testing.T) {
	stub := &stubValidator{res: voucher.Result{Reason: voucher.ReasonMinPurchase, Message: "Minimum purchase of Rp 100.000 required"}}
	svc := &Service{Vouchers: stub}

	out, err := svc.Summary(context.Background(), "", Input{
		Items:          []pricing.Line{{ProductID: "p1", Qty: 1, Price: 20000}},
		DeliveryMethod: "instant",
		VoucherCode:    "BIG",
	})
	require.NoError(t, err)
	require.Zero(t, out.Discount)
	require.Equal(t, pricing.Money(40000), out.Total)
	require.False(t, out.Voucher.Valid)
}

func TestSummaryRejectsBadInput(t *testing.T) {
	svc := &Service{}

	_, err := svc.Summary(context.Background(), "", Input{DeliveryMethod: "regular"})
	require.Error(t, err)
	require.True(t, common.IsAppError(err))

	_, err = svc.Summary(context.Background(), "", Input{
		Items:          []pricing.Line{{ProductID: "p1", Qty: 1, Price: 1}},
		DeliveryMethod: "drone",
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNKNOWN_DELIVERY_METHOD", appErr.Code)
}

func TestSummaryHandler(t *testing.T) {
	h := &Handler{Svc: &Service{}}

	body := `{"items":[{"product_id":"p1","quantity":2,"price":10000,"discount_price":8000}],"delivery_method":"fast"}`
	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/summary", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data Output `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, pricing.Money(16000), resp.Data.Subtotal)
	require.Equal(t, pricing.Money(28000), resp.Data.Total)

	rec = httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout/summary", strings.NewReader(`{"items":[]}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}
