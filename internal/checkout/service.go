package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-voucher/internal/common"
	"github.com/noah-isme/toko-voucher/internal/pricing"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

// VoucherValidator evaluates a voucher code against a cart total.
type VoucherValidator interface {
	Validate(ctx context.Context, code string, cartTotal float64, userID string) voucher.Result
}

// Input is a checkout summary request.
type Input struct {
	Items          []pricing.Line `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod string         `json:"delivery_method" validate:"required"`
	VoucherCode    string         `json:"voucher_code"`
}

// Output is the priced checkout with the voucher evaluation that produced the discount.
type Output struct {
	pricing.Summary
	DeliveryMethod pricing.DeliveryMethod `json:"delivery_method"`
	Voucher        *voucher.Result        `json:"voucher,omitempty"`
}

// Service prices a checkout. It does not persist orders.
type Service struct {
	Vouchers VoucherValidator
	Methods  []pricing.DeliveryMethod
	Validate *validator.Validate
}

// Summary prices in for userID, which may be empty for anonymous shoppers. An
// ineligible voucher yields zero discount and its rejection on Output.Voucher.
func (s *Service) Summary(ctx context.Context, userID string, in Input) (Output, error) {
	if err := s.check(in); err != nil {
		return Output{}, err
	}
	methods := s.Methods
	if len(methods) == 0 {
		methods = pricing.DefaultDeliveryMethods
	}
	method, ok := pricing.FindDelivery(methods, in.DeliveryMethod)
	if !ok {
		return Output{}, common.NewAppError("UNKNOWN_DELIVERY_METHOD", fmt.Sprintf("unknown delivery method %q", in.DeliveryMethod), http.StatusBadRequest, nil)
	}

	var discount pricing.Money
	var result *voucher.Result
	if code := strings.TrimSpace(in.VoucherCode); code != "" && s.Vouchers != nil {
		res := s.Vouchers.Validate(ctx, code, float64(pricing.Subtotal(in.Items)), userID)
		if res.Valid && res.Discount != nil {
			discount = *res.Discount
		}
		result = &res
	}

	return Output{
		Summary:        pricing.Compute(in.Items, method.Fee, discount),
		DeliveryMethod: method,
		Voucher:        result,
	}, nil
}

func (s *Service) check(in Input) error {
	v := s.Validate
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	appErr := common.NewAppError("VALIDATION_ERROR", "invalid checkout payload", http.StatusBadRequest, err)
	appErr.Details = fields
	return appErr
}
