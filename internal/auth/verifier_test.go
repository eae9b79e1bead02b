package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/common"
)

const testSecret = "test-secret-with-enough-entropy"

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestVerifier(t *testing.T, roleClaim string) *Verifier {
	t.Helper()
	v, err := NewVerifier(VerifierConfig{
		Secret:    testSecret,
		Issuer:    "https://auth.example.com",
		Audience:  "authenticated",
		RoleClaim: roleClaim,
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return v
}

func signToken(t *testing.T, secret string, claims map[string]any) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Issuer("https://auth.example.com").
		Audience([]string{"authenticated"}).
		Subject("user-1").
		IssuedAt(testNow).
		Expiration(testNow.Add(time.Hour)).
		Build()
	require.NoError(t, err)
	for k, v := range claims {
		require.NoError(t, tok.Set(k, v))
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(secret)))
	require.NoError(t, err)
	return string(signed)
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(VerifierConfig{Secret: "  "})
	require.Error(t, err)
}

func TestVerifierParse(t *testing.T) {
	v := newTestVerifier(t, "app_role")

	id, err := v.Parse(signToken(t, testSecret, map[string]any{"app_role": "admin"}))
	require.NoError(t, err)
	require.Equal(t, "user-1", id.UserID)
	require.Equal(t, []string{"admin"}, id.Roles)

	_, err = v.Parse(signToken(t, "wrong-secret", nil))
	require.Error(t, err)
	require.True(t, common.IsAppError(err))

	_, err = v.Parse("")
	require.Error(t, err)

	_, err = v.Parse("not-a-token")
	require.Error(t, err)
}

func TestVerifierNestedRoleClaim(t *testing.T) {
	v := newTestVerifier(t, "app_metadata.roles")
	token := signToken(t, testSecret, map[string]any{
		"app_metadata": map[string]any{"roles": []any{"admin", "support"}},
	})
	id, err := v.Parse(token)
	require.NoError(t, err)
	require.Equal(t, []string{"admin", "support"}, id.Roles)
}

func TestMiddlewareRequireAuth(t *testing.T) {
	m := Middleware{Verifier: newTestVerifier(t, "app_role")}
	var gotUser string
	h := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "user-1", gotUser)
}

func TestMiddlewareAuthenticateIsOptional(t *testing.T) {
	m := Middleware{Verifier: newTestVerifier(t, "app_role")}
	var authed bool
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authed = common.UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.False(t, authed)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, nil))
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, authed)
}

func TestRequireRole(t *testing.T) {
	m := Middleware{Verifier: newTestVerifier(t, "app_role")}
	h := m.RequireAuth(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, map[string]any{"app_role": "customer"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, map[string]any{"app_role": "admin"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
