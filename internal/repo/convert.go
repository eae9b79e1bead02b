package repo

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/toko-voucher/internal/db/gen"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// uuidValue parses id; ok is false for malformed input so lookups can report a miss.
func uuidValue(id string) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func textValue(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func float8Value(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func float8Ptr(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func voucherFromRow(row dbgen.Voucher) voucher.Voucher {
	return voucher.Voucher{
		ID:            uuidString(row.ID),
		Code:          row.Code,
		Name:          row.Name,
		Description:   textPtr(row.Description),
		DiscountType:  voucher.DiscountType(row.DiscountType),
		DiscountValue: row.DiscountValue,
		MinPurchase:   row.MinPurchase,
		MaxDiscount:   float8Ptr(row.MaxDiscount),
		StartDate:     timePtr(row.StartDate),
		EndDate:       timePtr(row.EndDate),
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

func claimFromRow(row dbgen.UserVoucher) voucher.Claim {
	return voucher.Claim{
		ID:        uuidString(row.ID),
		UserID:    uuidString(row.UserID),
		VoucherID: uuidString(row.VoucherID),
		IsUsed:    row.IsUsed,
		UsedAt:    timePtr(row.UsedAt),
		ClaimedAt: row.ClaimedAt.Time,
	}
}

func claimedFromRow(row dbgen.ListUserVouchersRow) voucher.ClaimedVoucher {
	v := voucherFromRow(dbgen.Voucher{
		ID:            row.ID,
		Code:          row.Code,
		Name:          row.Name,
		Description:   row.Description,
		DiscountType:  row.DiscountType,
		DiscountValue: row.DiscountValue,
		MinPurchase:   row.MinPurchase,
		MaxDiscount:   row.MaxDiscount,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate,
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	})
	return voucher.ClaimedVoucher{
		Voucher: v,
		Claim: voucher.Claim{
			ID:        uuidString(row.ClaimID),
			VoucherID: v.ID,
			IsUsed:    row.IsUsed,
			UsedAt:    timePtr(row.UsedAt),
			ClaimedAt: row.ClaimedAt.Time,
		},
	}
}

func statsFromRow(row dbgen.ListVouchersWithStatsRow) voucher.Stats {
	return voucher.Stats{
		Voucher: voucherFromRow(dbgen.Voucher{
			ID:            row.ID,
			Code:          row.Code,
			Name:          row.Name,
			Description:   row.Description,
			DiscountType:  row.DiscountType,
			DiscountValue: row.DiscountValue,
			MinPurchase:   row.MinPurchase,
			MaxDiscount:   row.MaxDiscount,
			StartDate:     row.StartDate,
			EndDate:       row.EndDate,
			IsActive:      row.IsActive,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		}),
		ClaimedCount: row.ClaimedCount,
		UsedCount:    row.UsedCount,
	}
}
