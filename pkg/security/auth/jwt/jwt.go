// Package jwt issues and validates the signed access tokens the Aegis
// API authenticates with. Tokens carry the subject and an optional
// tenant domain; role membership is never embedded in the token and is
// resolved from the role cache on every request.
package jwt

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v4"

	"github.com/kart-io/aegis/pkg/utils/errors"
)

// Claims are the registered claims plus the tenant domain the token
// was issued for.
type Claims struct {
	jwtlib.RegisteredClaims
	Domain string `json:"dom,omitempty"`
}

// Manager signs and parses access tokens with a shared HMAC key.
type Manager struct {
	key     []byte
	issuer  string
	expired time.Duration
}

// NewManager creates a token manager. The key must satisfy the length
// requirement enforced by options.Validate.
func NewManager(key, issuer string, expired time.Duration) *Manager {
	return &Manager{key: []byte(key), issuer: issuer, expired: expired}
}

// Expired reports the token lifetime. The role cache uses the same
// value as its entry TTL so cached roles never outlive the token.
func (m *Manager) Expired() time.Duration {
	return m.expired
}

// IssueToken signs a token for subject in domain and returns the token
// string together with its expiry time.
func (m *Manager) IssueToken(subject, domain string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.expired)
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
		Domain: domain,
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, errors.ErrTokenInvalid.WithCause(err)
	}
	return signed, expiresAt, nil
}

// ParseToken validates the signature and standard claims and returns
// the parsed claims. Any failure maps to ErrTokenInvalid.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.ErrTokenInvalid.WithMessagef("unexpected signing method: %v", t.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		return nil, errors.ErrTokenInvalid.WithCause(err)
	}
	if !token.Valid {
		return nil, errors.ErrTokenInvalid
	}
	return claims, nil
}
