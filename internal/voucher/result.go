package voucher

import "errors"

// Reason is the machine-readable outcome of a voucher operation.
type Reason string

const (
	ReasonOK             Reason = "ok"
	ReasonBlankCode      Reason = "blank_code"
	ReasonNotFound       Reason = "not_found"
	ReasonInactive       Reason = "inactive"
	ReasonExpired        Reason = "expired"
	ReasonNotStarted     Reason = "not_started"
	ReasonMinPurchase    Reason = "min_purchase"
	ReasonNotClaimed     Reason = "not_claimed"
	ReasonAlreadyUsed    Reason = "already_used"
	ReasonAlreadyClaimed Reason = "already_claimed"
	ReasonInternal       Reason = "internal"
)

// User-facing messages.
const (
	MsgBlankCode       = "Please enter a voucher code"
	MsgInvalidCode     = "Invalid voucher code"
	MsgInactive        = "This voucher is inactive"
	MsgExpired         = "This voucher has expired"
	MsgNotStarted      = "This voucher is not active yet"
	MsgNotClaimed      = "You need to claim this voucher first"
	MsgAlreadyUsed     = "This voucher has already been used"
	MsgClaimInvalid    = "Invalid or expired voucher code"
	MsgAlreadyClaimed  = "You have already claimed this voucher"
	MsgClaimed         = "Voucher claimed successfully"
	MsgMarkedUsed      = "Voucher marked as used"
	MsgValidateFailed  = "Failed to validate voucher"
	MsgClaimFailed     = "Failed to claim voucher"
	MsgApplyFailed     = "Failed to apply voucher"
	msgMinPurchaseTmpl = "Minimum purchase of %s required"
	msgAppliedTmpl     = "Voucher applied! You save %s"
)

var (
	ErrBlankCode      = errors.New("voucher code is blank")
	ErrNotFound       = errors.New("voucher not found")
	ErrInactive       = errors.New("voucher inactive")
	ErrExpired        = errors.New("voucher expired")
	ErrNotStarted     = errors.New("voucher not started")
	ErrMinPurchase    = errors.New("voucher minimum purchase not met")
	ErrNotClaimed     = errors.New("voucher not claimed")
	ErrAlreadyUsed    = errors.New("voucher already used")
	ErrAlreadyClaimed = errors.New("voucher already claimed")
	// ErrInternal wraps infrastructure failures surfaced through a Result.
	ErrInternal = errors.New("voucher operation failed")
)

var reasonErrors = map[Reason]error{
	ReasonBlankCode:      ErrBlankCode,
	ReasonNotFound:       ErrNotFound,
	ReasonInactive:       ErrInactive,
	ReasonExpired:        ErrExpired,
	ReasonNotStarted:     ErrNotStarted,
	ReasonMinPurchase:    ErrMinPurchase,
	ReasonNotClaimed:     ErrNotClaimed,
	ReasonAlreadyUsed:    ErrAlreadyUsed,
	ReasonAlreadyClaimed: ErrAlreadyClaimed,
	ReasonInternal:       ErrInternal,
}

// Result is the single outcome shape shared by every voucher operation.
// Cause carries the storage error behind a ReasonInternal result and is never serialised.
type Result struct {
	Valid    bool     `json:"valid"`
	Reason   Reason   `json:"reason"`
	Message  string   `json:"message"`
	Voucher  *Voucher `json:"voucher,omitempty"`
	Discount *int64   `json:"discount,omitempty"`
	Claim    *Claim   `json:"claim,omitempty"`
	Cause    error    `json:"-"`
}

// Err converts an unsuccessful result into its sentinel error. Successful results return nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	err, ok := reasonErrors[r.Reason]
	if !ok {
		err = ErrInternal
	}
	if r.Cause != nil {
		return errors.Join(err, r.Cause)
	}
	return err
}

// Internal reports whether the result was caused by an infrastructure failure.
func (r Result) Internal() bool {
	return r.Reason == ReasonInternal
}

func reject(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

func failure(message string, cause error) Result {
	return Result{Reason: ReasonInternal, Message: message, Cause: cause}
}
