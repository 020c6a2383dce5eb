// Package jwt provides JWT-based authentication for bookrag.
//
// Usage:
//
//	auth, err := jwt.New(
//	    jwt.WithKey("your-secret-key-min-32-chars-long"),
//	    jwt.WithExpired(24 * time.Hour),
//	)
//	token, err := auth.Sign(ctx, "reader-123")
//	claims, err := auth.Verify(ctx, token)
package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

const minKeyLength = 32

// JWT signs and verifies tokens.
type JWT struct {
	key     []byte
	method  jwt.SigningMethod
	expired time.Duration
	issuer  string
}

// Claims are the registered claims carried by bookrag tokens.
type Claims = jwt.RegisteredClaims

// Option is a functional option for the JWT authenticator.
type Option func(*JWT)

// New creates a new JWT authenticator.
func New(opts ...Option) (*JWT, error) {
	j := &JWT{
		method:  jwt.SigningMethodHS256,
		expired: 24 * time.Hour,
		issuer:  "bookrag",
	}

	for _, opt := range opts {
		opt(j)
	}

	if len(j.key) < minKeyLength {
		return nil, fmt.Errorf("jwt: signing key must be at least %d bytes", minKeyLength)
	}

	return j, nil
}

// WithKey sets the signing key.
func WithKey(key string) Option {
	return func(j *JWT) {
		j.key = []byte(key)
	}
}

// WithExpired sets the token expiration duration.
func WithExpired(d time.Duration) Option {
	return func(j *JWT) {
		j.expired = d
	}
}

// WithIssuer sets the token issuer.
func WithIssuer(issuer string) Option {
	return func(j *JWT) {
		j.issuer = issuer
	}
}

// Sign creates a new token for the given subject.
func (j *JWT) Sign(_ context.Context, subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(j.expired)),
	}

	token := jwt.NewWithClaims(j.method, claims)
	signed, err := token.SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("jwt: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string.
func (j *JWT) Verify(_ context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != j.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return j.key, nil
	})
	if err != nil || !token.Valid {
		return nil, apierrors.ErrTokenInvalid.WithCause(err)
	}

	if j.issuer != "" && claims.Issuer != j.issuer {
		return nil, apierrors.ErrTokenInvalid.WithMessage("invalid token issuer")
	}

	return claims, nil
}

// Expired returns the configured token lifetime.
func (j *JWT) Expired() time.Duration {
	return j.expired
}
