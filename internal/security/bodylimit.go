package security

import (
	"errors"
	"net/http"

	"github.com/noah-isme/toko-voucher/internal/common"
)

// BodyLimit caps request payloads at Max bytes.
type BodyLimit struct {
	Max int64
}

// Middleware rejects declared oversize bodies with 413 up front and caps streamed ones.
// Handlers see a *http.MaxBytesError from the reader once the cap is crossed.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large", map[string]int64{"max_bytes": b.Max})
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}

// TooLarge reports whether err came from a body that crossed the limit.
func TooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
