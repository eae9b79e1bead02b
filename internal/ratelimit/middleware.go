package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/toko-voucher/internal/common"
)

// Handler enforces a Policy before delegating to the next handler. Limiter
// failures fail open and are reported through OnError.
type Handler struct {
	Policy  Policy
	Key     func(*http.Request) string
	OnError func(*http.Request, error)
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Policy == nil || h.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		decision, err := h.Policy.Take(r.Context(), h.Key(r))
		if err != nil {
			if h.OnError != nil {
				h.OnError(r, err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(decision.Limit, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			retryAfter := int(time.Until(decision.ResetAt).Seconds())
			headers.Set("Retry-After", strconv.Itoa(max(retryAfter, 0)))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
