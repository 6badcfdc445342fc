package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/keyxmakerx/authgate/internal/apperror"
	"github.com/keyxmakerx/authgate/internal/plugins/revocations"
)

// DefaultCookieName is the cookie carrying the token when none is configured.
const DefaultCookieName = "token"

// bearerPrefix is matched case-sensitively.
const bearerPrefix = "Bearer "

// Gate decides whether a request is authenticated. The steps run in a fixed
// order and stop at the first failure:
//
//  1. extract the token (cookie, then Authorization: Bearer)
//  2. refuse revoked tokens
//  3. verify signature and expiry
//  4. resolve the subject to an existing user
//
// Gate holds no mutable state and never writes to its stores.
type Gate struct {
	revoked    revocations.Store
	codec      *TokenCodec
	users      UserRepository
	cookieName string
}

// NewGate creates a gate. An empty cookieName selects DefaultCookieName.
func NewGate(revoked revocations.Store, codec *TokenCodec, users UserRepository, cookieName string) *Gate {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Gate{
		revoked:    revoked,
		codec:      codec,
		users:      users,
		cookieName: cookieName,
	}
}

// CookieName returns the name of the cookie the gate reads.
func (g *Gate) CookieName() string {
	return g.cookieName
}

// Authenticate runs the decision procedure for r. A refused request returns a
// *Rejection; any other error is a store failure and must not be reported to
// the client as a 401.
func (g *Gate) Authenticate(ctx context.Context, r *http.Request) (*Identity, error) {
	token := ExtractToken(r, g.cookieName)
	if token == "" {
		return nil, &Rejection{Reason: RejectNoToken}
	}

	revoked, err := g.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, &Rejection{Reason: RejectRevoked}
	}

	subject, err := g.codec.Verify(token)
	if err != nil {
		var tokErr *TokenError
		if errors.As(err, &tokErr) {
			return nil, &Rejection{Reason: RejectInvalidToken, TokenKind: tokErr.Kind}
		}
		return nil, err
	}

	user, err := g.users.FindByID(ctx, subject)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, &Rejection{Reason: RejectUserMissing}
		}
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	return &Identity{User: user, Token: token}, nil
}

// ExtractToken returns the token carried by r, preferring the named cookie
// over an Authorization: Bearer header. Returns "" when neither is present.
func ExtractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
