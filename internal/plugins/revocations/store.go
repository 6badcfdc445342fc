package revocations

import (
	"context"
)

// Store is the revocation list contract. Implementations must be safe for
// concurrent use and Revoke must be idempotent: revoking an already revoked
// token succeeds and leaves the original record in place.
type Store interface {
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Find(ctx context.Context, token string) (*Record, error)
}
