package voucher

import (
	"math"
	"strings"
	"time"
)

// DiscountType selects how the discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Voucher is a promotional discount definition.
type Voucher struct {
	ID            string       `json:"id"`
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Description   *string      `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	MinPurchase   float64      `json:"min_purchase"`
	MaxDiscount   *float64     `json:"max_discount,omitempty"`
	StartDate     *time.Time   `json:"start_date,omitempty"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Claim records that a user holds a voucher. A used claim never reverts.
type Claim struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	VoucherID string     `json:"voucher_id"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ClaimedAt time.Time  `json:"claimed_at"`
}

// Rules holds the evaluation toggles applied on top of the fixed check order.
type Rules struct {
	EnforceStartDate bool
}

// Expired reports whether the voucher end date lies strictly before now.
func (v Voucher) Expired(now time.Time) bool {
	return v.EndDate != nil && v.EndDate.Before(now)
}

// NotStarted reports whether the voucher start date lies strictly after now.
func (v Voucher) NotStarted(now time.Time) bool {
	return v.StartDate != nil && v.StartDate.After(now)
}

// Claimable reports whether a voucher may be claimed at now. A missing end date never expires.
func (v Voucher) Claimable(now time.Time) bool {
	return v.IsActive && !v.Expired(now)
}

// NormalizeCode trims the code and upper-cases it to its canonical form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// checkVoucher runs the voucher-level checks in order and returns the first failing reason.
func (r Rules) checkVoucher(v Voucher, cartTotal float64, now time.Time) (Reason, bool) {
	if !v.IsActive {
		return ReasonInactive, false
	}
	if v.Expired(now) {
		return ReasonExpired, false
	}
	if r.EnforceStartDate && v.NotStarted(now) {
		return ReasonNotStarted, false
	}
	if v.MinPurchase > 0 && cartTotal < v.MinPurchase {
		return ReasonMinPurchase, false
	}
	return ReasonOK, true
}

// checkClaim verifies the user's claim state. A nil claim means the user never claimed the voucher.
func checkClaim(c *Claim) (Reason, bool) {
	if c == nil {
		return ReasonNotClaimed, false
	}
	if c.IsUsed {
		return ReasonAlreadyUsed, false
	}
	return ReasonOK, true
}

// Compute returns the discount for cartTotal rounded to the nearest whole unit.
// The result is never negative and never exceeds cartTotal.
func Compute(v Voucher, cartTotal float64) int64 {
	if cartTotal <= 0 || math.IsNaN(cartTotal) {
		return 0
	}
	var discount float64
	switch v.DiscountType {
	case DiscountPercentage:
		discount = cartTotal * v.DiscountValue / 100
		if v.MaxDiscount != nil && *v.MaxDiscount > 0 && discount > *v.MaxDiscount {
			discount = *v.MaxDiscount
		}
	case DiscountFixed:
		discount = v.DiscountValue
	}
	if discount > cartTotal {
		discount = cartTotal
	}
	if discount <= 0 {
		return 0
	}
	rounded := math.Round(discount)
	if rounded > cartTotal {
		rounded = math.Floor(cartTotal)
	}
	return int64(rounded)
}

// ExpiryStatus summarises how close a voucher is to its end date.
type ExpiryStatus struct {
	IsExpired     bool `json:"is_expired"`
	DaysRemaining *int `json:"days_remaining,omitempty"`
}

// Expiry reports the expiry status of v at now. Days remaining round up to whole days.
func Expiry(v Voucher, now time.Time) ExpiryStatus {
	if v.EndDate == nil {
		return ExpiryStatus{}
	}
	diff := v.EndDate.Sub(now)
	days := int(math.Ceil(diff.Hours() / 24))
	return ExpiryStatus{IsExpired: diff < 0, DaysRemaining: &days}
}
