package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

const issuer = "footprintweb"

// Claims of session tokens. The subject is the session id.
type Claims struct {
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type TokenOption func(*Tokens) *Tokens

// WithNow replaces the clock of issuing and verification.
func WithNow(now func() time.Time) TokenOption {
	return func(t *Tokens) *Tokens {
		t.now = now
		return t
	}
}

func NewTokens(key []byte, ttl time.Duration, options ...TokenOption) *Tokens {
	t := &Tokens{key: key, ttl: ttl, now: time.Now}
	for _, opt := range options {
		t = opt(t)
	}
	return t
}

// NewID generates a session id.
func NewID() string {
	return uuid.NewString()
}

// Issue signs a token for sessionID.
func (t *Tokens) Issue(sessionID string) (string, error) {
	now := t.now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	return token.SignedString(t.key)
}

// Verify returns the session id of token.
func (t *Tokens) Verify(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no session", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Expiry of tokens issued now.
func (t *Tokens) Expiry() time.Time {
	return t.now().Add(t.ttl)
}
