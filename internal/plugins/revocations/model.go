// Package revocations records tokens that were explicitly invalidated before
// their natural expiry (logout). A token is keyed by its exact raw string;
// two different strings are two different records even when they decode to
// the same claims.
//
// Records never expire and are never removed by this package.
package revocations

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotRevoked is returned by Store.Find when the token has no record.
var ErrNotRevoked = errors.New("token not revoked")

// Record is one revoked token.
type Record struct {
	Token     string    `json:"token"`
	RevokedAt time.Time `json:"revoked_at"`
}

// tokenKey derives the fixed-width lookup key for a raw token string. The
// raw string can exceed index length limits, the digest cannot.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
