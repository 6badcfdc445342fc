package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of tokens issued without an explicit TTL.
const DefaultTokenTTL = 24 * time.Hour

// ErrEmptySecret is returned by NewTokenCodec when no signing secret is given.
var ErrEmptySecret = errors.New("token signing secret is empty")

// TokenCodec issues and verifies HS256-signed tokens carrying a subject id.
// It is immutable after construction and safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec creates a codec signing with secret. A non-positive ttl
// selects DefaultTokenTTL.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the default token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue returns a token for subjectID valid for the default TTL.
func (c *TokenCodec) Issue(subjectID string) (string, error) {
	return c.IssueWithTTL(subjectID, c.ttl)
}

// IssueWithTTL returns a token for subjectID expiring ttl from now. A
// negative ttl yields a token that is already expired.
func (c *TokenCodec) IssueWithTTL(subjectID string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature and expiry and returns its subject.
// Failures are always a *TokenError. The signature is checked before expiry,
// so a tampered expired token reports TokenBadSignature.
func (c *TokenCodec) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", &TokenError{Kind: classifyTokenError(err), Err: err}
	}

	if claims.Subject == "" {
		return "", &TokenError{Kind: TokenMalformed, Err: errors.New("missing sub claim")}
	}
	return claims.Subject, nil
}

// classifyTokenError maps jwt/v5 errors onto the three verification kinds.
// A disallowed algorithm is reported by jwt as ErrTokenSignatureInvalid.
func classifyTokenError(err error) TokenErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return TokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	default:
		return TokenMalformed
	}
}
