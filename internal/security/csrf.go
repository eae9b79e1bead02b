package security

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/noah-isme/toko-voucher/internal/common"
)

// CSRF applies the double-submit check to unsafe requests authenticated by the session
// cookie. Requests carrying a bearer token, or no session cookie at all, pass through.
type CSRF struct {
	SessionCookie string
	Header        string
	Cookie        string
}

// Middleware rejects unsafe cookie-authenticated requests whose header token does not
// match the CSRF cookie.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	header := valueOr(c.Header, "X-CSRF-Token")
	cookieName := valueOr(c.Cookie, "csrf_token")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.SessionCookie == "" || safeMethod(r.Method) || hasBearer(r) {
			next.ServeHTTP(w, r)
			return
		}
		if session, err := r.Cookie(c.SessionCookie); err != nil || session.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimSpace(r.Header.Get(header))
		cookie, err := r.Cookie(cookieName)
		if token == "" || err != nil || !equal(token, cookie.Value) {
			common.JSONError(w, http.StatusForbidden, "CSRF_FAILED", "missing or invalid csrf token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func hasBearer(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(r.Header.Get("Authorization"))), "bearer ")
}

func equal(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
