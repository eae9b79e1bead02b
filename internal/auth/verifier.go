package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/toko-voucher/internal/common"
)

// Identity is the caller resolved from an access token.
type Identity struct {
	UserID string
	Roles  []string
}

// Verifier checks access tokens issued by the hosted auth provider. It never issues tokens.
type Verifier struct {
	secret    []byte
	validator TokenValidator
	roleClaim string
	now       func() time.Time
}

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	// RoleClaim names the claim carrying roles. Dotted paths reach into nested objects,
	// e.g. "app_metadata.roles".
	RoleClaim string
	Now       func() time.Time
}

// NewVerifier constructs an HS256 Verifier.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	skew := cfg.ClockSkew
	if skew < 0 {
		skew = 0
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		secret: []byte(secret),
		validator: TokenValidator{
			Issuer:    strings.TrimSpace(cfg.Issuer),
			Audience:  strings.TrimSpace(cfg.Audience),
			ClockSkew: skew,
			Algorithm: jwa.HS256,
		},
		roleClaim: strings.TrimSpace(cfg.RoleClaim),
		now:       now,
	}, nil
}

// Parse validates token and returns the identity it carries.
func (v *Verifier) Parse(token string) (Identity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Identity{}, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if algorithm != v.validator.Algorithm {
		return Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, v.secret), jwt.WithValidate(false))
	if err != nil {
		return Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if err := v.validator.Validate(parsed, algorithm, v.now()); err != nil {
		return Identity{}, common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	return Identity{UserID: strings.TrimSpace(parsed.Subject()), Roles: v.roles(parsed)}, nil
}

func (v *Verifier) roles(tok jwt.Token) []string {
	if v.roleClaim == "" {
		return nil
	}
	path := strings.Split(v.roleClaim, ".")
	value, ok := tok.Get(path[0])
	if !ok {
		return nil
	}
	for _, key := range path[1:] {
		obj, isMap := value.(map[string]any)
		if !isMap {
			return nil
		}
		if value, ok = obj[key]; !ok {
			return nil
		}
	}
	switch roles := value.(type) {
	case string:
		if roles = strings.TrimSpace(roles); roles != "" {
			return []string{roles}
		}
	case []string:
		return roles
	case []any:
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
