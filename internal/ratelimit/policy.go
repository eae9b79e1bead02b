package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/toko-voucher/internal/common"
)

// Decision is the outcome of a single rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Policy consumes one unit of quota for key.
type Policy interface {
	Take(ctx context.Context, key string) (Decision, error)
}

// UserOrIP keys requests by the authenticated user, falling back to the client IP.
func UserOrIP(scope string) func(*http.Request) string {
	return func(r *http.Request) string {
		if id, ok := common.UserID(r.Context()); ok && id != "" {
			return scope + ":user:" + id
		}
		return scope + ":ip:" + common.ClientIP(r)
	}
}
