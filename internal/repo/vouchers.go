package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/toko-voucher/internal/db/gen"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

// TxBeginner starts database transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Vouchers implements voucher.Store and voucher.AdminStore over the generated queries.
type Vouchers struct {
	Q  dbgen.Querier
	DB TxBeginner

	inTx bool
}

var (
	_ voucher.Store      = (*Vouchers)(nil)
	_ voucher.AdminStore = (*Vouchers)(nil)
)

// NewVouchers builds a repository bound to db.
func NewVouchers(db interface {
	dbgen.DBTX
	TxBeginner
}) *Vouchers {
	return &Vouchers{Q: dbgen.New(db), DB: db}
}

// InTx runs fn inside a single transaction. Nested calls reuse the open transaction.
func (r *Vouchers) InTx(ctx context.Context, fn func(voucher.Store) error) error {
	if r.inTx {
		return fn(r)
	}
	if r.DB == nil {
		return errors.New("repo: transactions not configured")
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(&Vouchers{Q: dbgen.New(tx), inTx: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindVoucherByCode looks up a voucher case-insensitively.
func (r *Vouchers) FindVoucherByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	row, err := r.Q.GetVoucherByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	v := voucherFromRow(row)
	return &v, nil
}

// FindClaim returns the user's claim on a voucher, or nil.
func (r *Vouchers) FindClaim(ctx context.Context, userID, voucherID string) (*voucher.Claim, error) {
	uid, ok1 := uuidValue(userID)
	vid, ok2 := uuidValue(voucherID)
	if !ok1 || !ok2 {
		return nil, nil
	}
	row, err := r.Q.GetUserVoucher(ctx, dbgen.GetUserVoucherParams{UserID: uid, VoucherID: vid})
	return claimOrNil(row, err)
}

// LockClaim reads the claim with FOR UPDATE. It must run inside InTx.
func (r *Vouchers) LockClaim(ctx context.Context, userID, voucherID string) (*voucher.Claim, error) {
	if !r.inTx {
		return nil, errors.New("repo: LockClaim requires a transaction")
	}
	uid, ok1 := uuidValue(userID)
	vid, ok2 := uuidValue(voucherID)
	if !ok1 || !ok2 {
		return nil, nil
	}
	row, err := r.Q.GetUserVoucherForUpdate(ctx, dbgen.GetUserVoucherForUpdateParams{UserID: uid, VoucherID: vid})
	return claimOrNil(row, err)
}

func claimOrNil(row dbgen.UserVoucher, err error) (*voucher.Claim, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c := claimFromRow(row)
	return &c, nil
}

// InsertClaim stores a new unused claim. A concurrent duplicate maps to voucher.ErrDuplicateClaim.
func (r *Vouchers) InsertClaim(ctx context.Context, userID, voucherID string) (voucher.Claim, error) {
	uid, ok := uuidValue(userID)
	if !ok {
		return voucher.Claim{}, fmt.Errorf("invalid user id %q", userID)
	}
	vid, ok := uuidValue(voucherID)
	if !ok {
		return voucher.Claim{}, fmt.Errorf("invalid voucher id %q", voucherID)
	}
	row, err := r.Q.InsertUserVoucher(ctx, dbgen.InsertUserVoucherParams{UserID: uid, VoucherID: vid})
	if err != nil {
		if isUniqueViolation(err) {
			return voucher.Claim{}, voucher.ErrDuplicateClaim
		}
		return voucher.Claim{}, err
	}
	return claimFromRow(row), nil
}

// UpdateClaimUsed flips an unused claim to used and returns the affected row count.
func (r *Vouchers) UpdateClaimUsed(ctx context.Context, voucherID, userID string, at time.Time) (int64, error) {
	uid, ok1 := uuidValue(userID)
	vid, ok2 := uuidValue(voucherID)
	if !ok1 || !ok2 {
		return 0, nil
	}
	return r.Q.MarkUserVoucherUsed(ctx, dbgen.MarkUserVoucherUsedParams{
		UsedAt:    pgtype.Timestamptz{Time: at, Valid: true},
		VoucherID: vid,
		UserID:    uid,
	})
}

// ListAvailable returns active vouchers that have not expired at now.
func (r *Vouchers) ListAvailable(ctx context.Context, now time.Time) ([]voucher.Voucher, error) {
	rows, err := r.Q.ListAvailableVouchers(ctx, pgtype.Timestamptz{Time: now, Valid: true})
	if err != nil {
		return nil, err
	}
	out := make([]voucher.Voucher, 0, len(rows))
	for _, row := range rows {
		out = append(out, voucherFromRow(row))
	}
	return out, nil
}

// ListClaimed returns the user's claims joined with their vouchers, newest first.
func (r *Vouchers) ListClaimed(ctx context.Context, userID string) ([]voucher.ClaimedVoucher, error) {
	uid, ok := uuidValue(userID)
	if !ok {
		return []voucher.ClaimedVoucher{}, nil
	}
	rows, err := r.Q.ListUserVouchers(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]voucher.ClaimedVoucher, 0, len(rows))
	for _, row := range rows {
		cv := claimedFromRow(row)
		cv.Claim.UserID = userID
		out = append(out, cv)
	}
	return out, nil
}
