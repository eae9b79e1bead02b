package security

import (
	"net/http"
	"strconv"
)

// Headers attaches the response headers every JSON API response carries.
type Headers struct {
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// Middleware sets the headers before the handler runs. HSTS is only sent over TLS.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "no-referrer")
		headers.Set("Cache-Control", "no-store")
		if r.TLS != nil && h.HSTSMaxAge > 0 {
			value := "max-age=" + strconv.Itoa(h.HSTSMaxAge)
			if h.HSTSIncludeSubdomains {
				value += "; includeSubDomains"
			}
			headers.Set("Strict-Transport-Security", value)
		}
		next.ServeHTTP(w, r)
	})
}
