package voucher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-voucher/internal/events"
	"github.com/noah-isme/toko-voucher/internal/obs"
)

// AvailableCacheKey holds the cached list of claimable vouchers.
const AvailableCacheKey = "vouchers:available"

var (
	serviceNopLogger = zerolog.Nop()
	errMissingUser   = errors.New("voucher: user id is required")
)

// Emitter publishes domain events.
type Emitter interface {
	Emit(ctx context.Context, topic, aggregateID string, payload any) (events.Event, error)
}

// Service evaluates, claims and redeems vouchers.
type Service struct {
	Store   Store
	Now     func() time.Time
	Money   Money
	Rules   Rules
	Locker  Locker
	LockTTL time.Duration
	Events  Emitter
	Cache   Cache
	Logger  *zerolog.Logger
}

// Validate checks whether code can be applied to cartTotal. An empty userID skips the claim checks.
// Validate never writes.
func (s *Service) Validate(ctx context.Context, code string, cartTotal float64, userID string) Result {
	if s == nil {
		return failure(MsgValidateFailed, errors.New("voucher service not configured"))
	}
	res := s.evaluate(ctx, s.Store, code, cartTotal, userID, false, MsgValidateFailed)
	s.finish(ctx, "validate", obs.VoucherValidationsTotal, res)
	return res
}

// MarkUsed consumes the user's claim with a single conditional update.
func (s *Service) MarkUsed(ctx context.Context, voucherID, userID string) Result {
	res := s.markUsed(ctx, strings.TrimSpace(voucherID), strings.TrimSpace(userID))
	s.finish(ctx, "mark_used", obs.VoucherRedemptionsTotal, res)
	if res.Valid {
		s.emit(ctx, events.TopicVoucherUsed, voucherID, map[string]any{
			"voucher_id": voucherID,
			"user_id":    userID,
		})
	}
	return res
}

func (s *Service) markUsed(ctx context.Context, voucherID, userID string) Result {
	if s == nil || s.Store == nil {
		return failure(MsgApplyFailed, errors.New("voucher service not configured"))
	}
	if userID == "" {
		return failure(MsgApplyFailed, errMissingUser)
	}
	if voucherID == "" {
		return reject(ReasonNotClaimed, MsgNotClaimed)
	}
	now := s.now()
	rows, err := s.Store.UpdateClaimUsed(ctx, voucherID, userID, now)
	if err != nil {
		return failure(MsgApplyFailed, fmt.Errorf("update claim: %w", err))
	}
	if rows > 0 {
		return Result{
			Valid:   true,
			Reason:  ReasonOK,
			Message: MsgMarkedUsed,
			Claim:   &Claim{UserID: userID, VoucherID: voucherID, IsUsed: true, UsedAt: &now},
		}
	}
	claim, err := s.Store.FindClaim(ctx, userID, voucherID)
	if err != nil {
		return failure(MsgApplyFailed, fmt.Errorf("find claim: %w", err))
	}
	if claim == nil {
		return reject(ReasonNotClaimed, MsgNotClaimed)
	}
	return reject(ReasonAlreadyUsed, MsgAlreadyUsed)
}

// Claim attaches the voucher identified by code to the user.
func (s *Service) Claim(ctx context.Context, code, userID string) Result {
	res := s.claim(ctx, code, strings.TrimSpace(userID))
	s.finish(ctx, "claim", obs.VoucherClaimsTotal, res)
	if res.Valid && res.Claim != nil {
		s.emit(ctx, events.TopicVoucherClaimed, res.Claim.VoucherID, res.Claim)
	}
	return res
}

func (s *Service) claim(ctx context.Context, code, userID string) Result {
	if s == nil || s.Store == nil {
		return failure(MsgClaimFailed, errors.New("voucher service not configured"))
	}
	normalized := NormalizeCode(code)
	if normalized == "" {
		return reject(ReasonBlankCode, MsgBlankCode)
	}
	if userID == "" {
		return failure(MsgClaimFailed, errMissingUser)
	}
	if s.Locker == nil {
		return s.claimUnlocked(ctx, normalized, userID)
	}
	var res Result
	key := "voucher:claim:" + userID + ":" + normalized
	err := s.Locker.WithLock(ctx, key, s.lockTTL(), func(ctx context.Context) error {
		res = s.claimUnlocked(ctx, normalized, userID)
		return nil
	})
	if err != nil {
		// the unique (user_id, voucher_id) index still rejects duplicates
		s.loggerFor(ctx).Warn().Err(err).Str("key", key).Msg("voucher_claim_lock_unavailable")
		return s.claimUnlocked(ctx, normalized, userID)
	}
	return res
}

func (s *Service) claimUnlocked(ctx context.Context, code, userID string) Result {
	v, err := s.Store.FindVoucherByCode(ctx, code)
	if err != nil {
		return failure(MsgClaimFailed, fmt.Errorf("find voucher: %w", err))
	}
	now := s.now()
	switch {
	case v == nil:
		return reject(ReasonNotFound, MsgClaimInvalid)
	case !v.IsActive:
		return reject(ReasonInactive, MsgClaimInvalid)
	case v.Expired(now):
		return reject(ReasonExpired, MsgClaimInvalid)
	}
	existing, err := s.Store.FindClaim(ctx, userID, v.ID)
	if err != nil {
		return failure(MsgClaimFailed, fmt.Errorf("find claim: %w", err))
	}
	if existing != nil {
		return reject(ReasonAlreadyClaimed, MsgAlreadyClaimed)
	}
	claim, err := s.Store.InsertClaim(ctx, userID, v.ID)
	if err != nil {
		if errors.Is(err, ErrDuplicateClaim) {
			return reject(ReasonAlreadyClaimed, MsgAlreadyClaimed)
		}
		return failure(MsgClaimFailed, fmt.Errorf("insert claim: %w", err))
	}
	return Result{Valid: true, Reason: ReasonOK, Message: MsgClaimed, Voucher: v, Claim: &claim}
}

// Redeem validates and consumes a claim inside one transaction. The claim row stays locked
// between the checks and the update, so a claim is redeemed at most once.
func (s *Service) Redeem(ctx context.Context, code string, cartTotal float64, userID string) Result {
	res := s.redeem(ctx, code, cartTotal, strings.TrimSpace(userID))
	s.finish(ctx, "redeem", obs.VoucherRedemptionsTotal, res)
	if res.Valid && res.Voucher != nil {
		payload := map[string]any{
			"voucher_id": res.Voucher.ID,
			"code":       res.Voucher.Code,
			"user_id":    userID,
			"cart_total": cartTotal,
		}
		if res.Discount != nil {
			payload["discount"] = *res.Discount
		}
		s.emit(ctx, events.TopicVoucherRedeemed, res.Voucher.ID, payload)
	}
	return res
}

func (s *Service) redeem(ctx context.Context, code string, cartTotal float64, userID string) Result {
	if s == nil || s.Store == nil {
		return failure(MsgApplyFailed, errors.New("voucher service not configured"))
	}
	if userID == "" {
		return failure(MsgApplyFailed, errMissingUser)
	}
	var res Result
	err := s.Store.InTx(ctx, func(tx Store) error {
		res = s.evaluate(ctx, tx, code, cartTotal, userID, true, MsgApplyFailed)
		if res.Internal() {
			return res.Cause
		}
		if !res.Valid {
			return nil
		}
		now := s.now()
		rows, err := tx.UpdateClaimUsed(ctx, res.Voucher.ID, userID, now)
		if err != nil {
			return fmt.Errorf("update claim: %w", err)
		}
		if rows == 0 {
			res = reject(ReasonAlreadyUsed, MsgAlreadyUsed)
			return nil
		}
		if res.Claim != nil {
			res.Claim.IsUsed = true
			res.Claim.UsedAt = &now
		}
		return nil
	})
	if err != nil {
		return failure(MsgApplyFailed, err)
	}
	return res
}

// evaluate runs the ordered rule chain against st. With lock set the claim row is read FOR UPDATE.
func (s *Service) evaluate(ctx context.Context, st Store, code string, cartTotal float64, userID string, lock bool, failMsg string) Result {
	if s == nil || st == nil {
		return failure(failMsg, errors.New("voucher service not configured"))
	}
	normalized := NormalizeCode(code)
	if normalized == "" {
		return reject(ReasonBlankCode, MsgBlankCode)
	}
	if cartTotal < 0 || math.IsNaN(cartTotal) {
		cartTotal = 0
	}
	v, err := st.FindVoucherByCode(ctx, normalized)
	if err != nil {
		return failure(failMsg, fmt.Errorf("find voucher: %w", err))
	}
	if v == nil {
		return reject(ReasonNotFound, MsgInvalidCode)
	}
	if reason, ok := s.Rules.checkVoucher(*v, cartTotal, s.now()); !ok {
		return reject(reason, s.message(reason, *v))
	}
	var claim *Claim
	if userID = strings.TrimSpace(userID); userID != "" {
		find := st.FindClaim
		if lock {
			find = st.LockClaim
		}
		claim, err = find(ctx, userID, v.ID)
		if err != nil {
			return failure(failMsg, fmt.Errorf("find claim: %w", err))
		}
		if reason, ok := checkClaim(claim); !ok {
			return reject(reason, s.message(reason, *v))
		}
	}
	discount := Compute(*v, cartTotal)
	return Result{
		Valid:    true,
		Reason:   ReasonOK,
		Message:  fmt.Sprintf(msgAppliedTmpl, s.Money.Format(float64(discount))),
		Voucher:  v,
		Discount: &discount,
		Claim:    claim,
	}
}

func (s *Service) message(reason Reason, v Voucher) string {
	switch reason {
	case ReasonInactive:
		return MsgInactive
	case ReasonExpired:
		return MsgExpired
	case ReasonNotStarted:
		return MsgNotStarted
	case ReasonMinPurchase:
		return fmt.Sprintf(msgMinPurchaseTmpl, s.Money.Format(v.MinPurchase))
	case ReasonNotClaimed:
		return MsgNotClaimed
	case ReasonAlreadyUsed:
		return MsgAlreadyUsed
	default:
		return MsgInvalidCode
	}
}

// GetByCode returns the voucher matching code case-insensitively.
func (s *Service) GetByCode(ctx context.Context, code string) (Voucher, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Voucher{}, ErrBlankCode
	}
	v, err := s.Store.FindVoucherByCode(ctx, normalized)
	if err != nil {
		return Voucher{}, err
	}
	if v == nil {
		return Voucher{}, ErrNotFound
	}
	return *v, nil
}

// ListAvailable returns active vouchers that have not expired, newest deadline first.
func (s *Service) ListAvailable(ctx context.Context) ([]Voucher, error) {
	now := s.now()
	var cached []Voucher
	if s.Cache != nil {
		hit, err := s.Cache.GetJSON(ctx, AvailableCacheKey, &cached)
		if err != nil {
			s.loggerFor(ctx).Warn().Err(err).Msg("voucher_cache_read_failed")
		}
		if hit {
			return filterClaimable(cached, now), nil
		}
	}
	list, err := s.Store.ListAvailable(ctx, now)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Voucher{}
	}
	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, AvailableCacheKey, list); err != nil {
			s.loggerFor(ctx).Warn().Err(err).Msg("voucher_cache_write_failed")
		}
	}
	return list, nil
}

func filterClaimable(list []Voucher, now time.Time) []Voucher {
	out := make([]Voucher, 0, len(list))
	for _, v := range list {
		if v.Claimable(now) {
			out = append(out, v)
		}
	}
	return out
}

// Tab filters a user's claimed vouchers.
type Tab string

const (
	TabAll       Tab = "all"
	TabAvailable Tab = "available"
	TabUsed      Tab = "used"
)

// ErrInvalidTab is returned by ParseTab for unknown values.
var ErrInvalidTab = errors.New("invalid voucher status filter")

// ParseTab maps a query value to a Tab. Empty input selects TabAll.
func ParseTab(raw string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TabAll:
		return TabAll, nil
	case TabAvailable:
		return TabAvailable, nil
	case TabUsed:
		return TabUsed, nil
	default:
		return "", ErrInvalidTab
	}
}

// ListClaimed returns the user's claimed vouchers. Available means unused and unexpired;
// used means used or expired.
func (s *Service) ListClaimed(ctx context.Context, userID string, tab Tab) ([]ClaimedVoucher, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errMissingUser
	}
	rows, err := s.Store.ListClaimed(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]ClaimedVoucher, 0, len(rows))
	for _, row := range rows {
		row.Expiry = Expiry(row.Voucher, now)
		spent := row.Claim.IsUsed || row.Expiry.IsExpired
		switch tab {
		case TabAvailable:
			if spent {
				continue
			}
		case TabUsed:
			if !spent {
				continue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// ExpiryStatus reports how many days remain before v expires.
func (s *Service) ExpiryStatus(v Voucher) ExpiryStatus {
	return Expiry(v, s.now())
}

// InvalidateAvailable drops the cached list of claimable vouchers.
func (s *Service) InvalidateAvailable(ctx context.Context) {
	if s == nil || s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, AvailableCacheKey); err != nil {
		s.loggerFor(ctx).Warn().Err(err).Msg("voucher_cache_invalidate_failed")
	}
}

func (s *Service) finish(ctx context.Context, op string, counter *prometheus.CounterVec, res Result) {
	if counter != nil {
		counter.WithLabelValues(string(res.Reason)).Inc()
	}
	if res.Internal() {
		s.loggerFor(ctx).Error().Err(res.Cause).Str("op", op).Msg("voucher_operation_failed")
	}
}

func (s *Service) emit(ctx context.Context, topic, aggregateID string, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, aggregateID, payload); err != nil {
		s.loggerFor(ctx).Warn().Err(err).Str("topic", topic).Msg("voucher_event_emit_failed")
	}
}

func (s *Service) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return 5 * time.Second
	}
	return s.LockTTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger != nil && ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	if s == nil || s.Logger == nil {
		return &serviceNopLogger
	}
	return s.Logger
}
