package voucher

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/toko-voucher/internal/common"
	"github.com/noah-isme/toko-voucher/internal/events"
)

// Input is the writable shape of a voucher used by create and update.
type Input struct {
	Code          string       `json:"code" validate:"required,max=50"`
	Name          string       `json:"name" validate:"required,max=120"`
	Description   *string      `json:"description" validate:"omitempty,max=500"`
	DiscountType  DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue float64      `json:"discount_value" validate:"gte=0"`
	MinPurchase   float64      `json:"min_purchase" validate:"gte=0"`
	MaxDiscount   *float64     `json:"max_discount" validate:"omitempty,gte=0"`
	StartDate     *time.Time   `json:"start_date"`
	EndDate       *time.Time   `json:"end_date"`
	IsActive      *bool        `json:"is_active"`
}

// Active reports the requested active flag, defaulting to true.
func (in Input) Active() bool {
	return in.IsActive == nil || *in.IsActive
}

// ValidationError lists the offending fields of an Input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, field+": "+rule)
	}
	return "invalid voucher: " + strings.Join(parts, ", ")
}

// NewValidator returns a validator that also enforces the cross-field voucher rules.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(inputRules, Input{})
	return v
}

func inputRules(sl validator.StructLevel) {
	in := sl.Current().Interface().(Input)
	if strings.ContainsAny(in.Code, " \t\r\n") {
		sl.ReportError(in.Code, "code", "Code", "no_whitespace", "")
	}
	if in.DiscountType == DiscountPercentage && in.DiscountValue > 100 {
		sl.ReportError(in.DiscountValue, "discount_value", "DiscountValue", "lte_100_for_percentage", "")
	}
	if in.MaxDiscount != nil && in.DiscountType != DiscountPercentage {
		sl.ReportError(in.MaxDiscount, "max_discount", "MaxDiscount", "percentage_only", "")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		sl.ReportError(in.EndDate, "end_date", "EndDate", "after_start_date", "")
	}
}

// Admin manages voucher definitions.
type Admin struct {
	Store    AdminStore
	Validate *validator.Validate
	// Service, when set, has its available-voucher cache dropped after every write.
	Service *Service
	// Events records every write together with the acting user.
	Events Emitter
}

// List returns a page of vouchers, newest first, with claim counters.
func (a *Admin) List(ctx context.Context, page, perPage int) ([]Stats, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	return a.Store.ListVouchers(ctx, perPage, (page-1)*perPage)
}

// Get returns a single voucher by id.
func (a *Admin) Get(ctx context.Context, id string) (Voucher, error) {
	return a.Store.GetVoucher(ctx, strings.TrimSpace(id))
}

// Create validates in and stores it with an upper-cased code.
func (a *Admin) Create(ctx context.Context, in Input) (Voucher, error) {
	in, err := a.check(in)
	if err != nil {
		return Voucher{}, err
	}
	v, err := a.Store.CreateVoucher(ctx, in)
	if err != nil {
		return Voucher{}, err
	}
	a.written(ctx, events.TopicVoucherCreated, v.ID, map[string]any{"code": v.Code})
	return v, nil
}

// Update replaces the voucher identified by id.
func (a *Admin) Update(ctx context.Context, id string, in Input) (Voucher, error) {
	in, err := a.check(in)
	if err != nil {
		return Voucher{}, err
	}
	v, err := a.Store.UpdateVoucher(ctx, strings.TrimSpace(id), in)
	if err != nil {
		return Voucher{}, err
	}
	a.written(ctx, events.TopicVoucherUpdated, v.ID, map[string]any{"code": v.Code})
	return v, nil
}

// Delete removes the voucher and, through the foreign key, its claims.
func (a *Admin) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := a.Store.DeleteVoucher(ctx, id); err != nil {
		return err
	}
	a.written(ctx, events.TopicVoucherDeleted, id, nil)
	return nil
}

// SetActive toggles whether the voucher can be claimed and applied.
func (a *Admin) SetActive(ctx context.Context, id string, active bool) (Voucher, error) {
	v, err := a.Store.SetVoucherActive(ctx, strings.TrimSpace(id), active)
	if err != nil {
		return Voucher{}, err
	}
	a.written(ctx, events.TopicVoucherActivated, v.ID, map[string]any{"code": v.Code, "is_active": active})
	return v, nil
}

func (a *Admin) written(ctx context.Context, topic, voucherID string, payload map[string]any) {
	a.Service.InvalidateAvailable(ctx)
	if a.Events == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["voucher_id"] = voucherID
	if actor, ok := common.UserID(ctx); ok {
		payload["actor_id"] = actor
	}
	if _, err := a.Events.Emit(ctx, topic, voucherID, payload); err != nil {
		a.Service.loggerFor(ctx).Warn().Err(err).Str("topic", topic).Msg("voucher_admin_event_failed")
	}
}

func (a *Admin) check(in Input) (Input, error) {
	in.Code = NormalizeCode(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.DiscountType = DiscountType(strings.ToLower(strings.TrimSpace(string(in.DiscountType))))
	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		if trimmed == "" {
			in.Description = nil
		} else {
			in.Description = &trimmed
		}
	}
	v := a.Validate
	if v == nil {
		v = NewValidator()
	}
	if err := v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return Input{}, &ValidationError{Fields: fields}
		}
		return Input{}, fmt.Errorf("validate voucher: %w", err)
	}
	return in, nil
}
