package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	dbgen "github.com/noah-isme/toko-voucher/internal/db/gen"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

// ListVouchers returns a page of vouchers with claim counters and the total count.
func (r *Vouchers) ListVouchers(ctx context.Context, limit, offset int) ([]voucher.Stats, int64, error) {
	rows, err := r.Q.ListVouchersWithStats(ctx, dbgen.ListVouchersWithStatsParams{Limit: int32(limit), Offset: int32(offset)})
	if err != nil {
		return nil, 0, err
	}
	total, err := r.Q.CountVouchers(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]voucher.Stats, 0, len(rows))
	for _, row := range rows {
		out = append(out, statsFromRow(row))
	}
	return out, total, nil
}

// GetVoucher loads a voucher by id.
func (r *Vouchers) GetVoucher(ctx context.Context, id string) (voucher.Voucher, error) {
	vid, ok := uuidValue(id)
	if !ok {
		return voucher.Voucher{}, voucher.ErrNotFound
	}
	return voucherOrErr(r.Q.GetVoucherByID(ctx, vid))
}

// CreateVoucher inserts a voucher definition.
func (r *Vouchers) CreateVoucher(ctx context.Context, in voucher.Input) (voucher.Voucher, error) {
	return voucherOrErr(r.Q.CreateVoucher(ctx, dbgen.CreateVoucherParams{
		Code:          in.Code,
		Name:          in.Name,
		Description:   textValue(in.Description),
		DiscountType:  dbgen.DiscountType(in.DiscountType),
		DiscountValue: in.DiscountValue,
		MinPurchase:   in.MinPurchase,
		MaxDiscount:   float8Value(in.MaxDiscount),
		StartDate:     timestamptz(in.StartDate),
		EndDate:       timestamptz(in.EndDate),
		IsActive:      in.Active(),
	}))
}

// UpdateVoucher replaces a voucher definition.
func (r *Vouchers) UpdateVoucher(ctx context.Context, id string, in voucher.Input) (voucher.Voucher, error) {
	vid, ok := uuidValue(id)
	if !ok {
		return voucher.Voucher{}, voucher.ErrNotFound
	}
	return voucherOrErr(r.Q.UpdateVoucher(ctx, dbgen.UpdateVoucherParams{
		ID:            vid,
		Code:          in.Code,
		Name:          in.Name,
		Description:   textValue(in.Description),
		DiscountType:  dbgen.DiscountType(in.DiscountType),
		DiscountValue: in.DiscountValue,
		MinPurchase:   in.MinPurchase,
		MaxDiscount:   float8Value(in.MaxDiscount),
		StartDate:     timestamptz(in.StartDate),
		EndDate:       timestamptz(in.EndDate),
		IsActive:      in.Active(),
	}))
}

// DeleteVoucher removes a voucher and, through the foreign key, its claims.
func (r *Vouchers) DeleteVoucher(ctx context.Context, id string) error {
	vid, ok := uuidValue(id)
	if !ok {
		return voucher.ErrNotFound
	}
	n, err := r.Q.DeleteVoucher(ctx, vid)
	if err != nil {
		return err
	}
	if n == 0 {
		return voucher.ErrNotFound
	}
	return nil
}

// SetVoucherActive toggles the active flag.
func (r *Vouchers) SetVoucherActive(ctx context.Context, id string, active bool) (voucher.Voucher, error) {
	vid, ok := uuidValue(id)
	if !ok {
		return voucher.Voucher{}, voucher.ErrNotFound
	}
	return voucherOrErr(r.Q.SetVoucherActive(ctx, dbgen.SetVoucherActiveParams{IsActive: active, ID: vid}))
}

func voucherOrErr(row dbgen.Voucher, err error) (voucher.Voucher, error) {
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return voucher.Voucher{}, voucher.ErrNotFound
		case isUniqueViolation(err):
			return voucher.Voucher{}, voucher.ErrDuplicateCode
		}
		return voucher.Voucher{}, err
	}
	return voucherFromRow(row), nil
}
