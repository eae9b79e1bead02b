package voucher

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateClaim is returned by Store.InsertClaim when the (user, voucher) pair already exists.
	ErrDuplicateClaim = errors.New("voucher claim already exists")
	// ErrDuplicateCode is returned by AdminStore writes that collide on the voucher code.
	ErrDuplicateCode = errors.New("voucher code already exists")
)

// Store is the data collaborator used by Service. Lookups return a nil pointer when the row is absent.
type Store interface {
	FindVoucherByCode(ctx context.Context, code string) (*Voucher, error)
	FindClaim(ctx context.Context, userID, voucherID string) (*Claim, error)
	// LockClaim behaves like FindClaim but holds a row lock until the surrounding transaction ends.
	LockClaim(ctx context.Context, userID, voucherID string) (*Claim, error)
	InsertClaim(ctx context.Context, userID, voucherID string) (Claim, error)
	// UpdateClaimUsed flips an unused claim to used and returns the number of rows affected.
	UpdateClaimUsed(ctx context.Context, voucherID, userID string, at time.Time) (int64, error)
	ListAvailable(ctx context.Context, now time.Time) ([]Voucher, error)
	ListClaimed(ctx context.Context, userID string) ([]ClaimedVoucher, error)
	// InTx runs fn against a transaction-scoped Store, committing when fn returns nil.
	InTx(ctx context.Context, fn func(Store) error) error
}

// ClaimedVoucher is a voucher joined with the caller's claim.
type ClaimedVoucher struct {
	Voucher
	Claim  Claim        `json:"claim"`
	Expiry ExpiryStatus `json:"expiry"`
}

// Stats decorates a voucher with claim counters for administration screens.
type Stats struct {
	Voucher
	ClaimedCount int64 `json:"claimed_count"`
	UsedCount    int64 `json:"used_count"`
}

// AdminStore persists voucher definitions. Missing rows surface as ErrNotFound.
type AdminStore interface {
	ListVouchers(ctx context.Context, limit, offset int) ([]Stats, int64, error)
	GetVoucher(ctx context.Context, id string) (Voucher, error)
	CreateVoucher(ctx context.Context, in Input) (Voucher, error)
	UpdateVoucher(ctx context.Context, id string, in Input) (Voucher, error)
	DeleteVoucher(ctx context.Context, id string) error
	SetVoucherActive(ctx context.Context, id string, active bool) (Voucher, error)
}

// Cache stores JSON-encoded read models.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// Locker serialises work on a key across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}
