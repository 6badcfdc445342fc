package revocations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// mariaDBStore persists revocations in the revoked_tokens table.
type mariaDBStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewMariaDBStore creates a revocation store backed by the given DB pool.
func NewMariaDBStore(db *sql.DB) Store {
	return &mariaDBStore{db: db, now: time.Now}
}

// Revoke inserts the token. INSERT IGNORE keeps the first revoked_at when the
// token is already present.
func (s *mariaDBStore) Revoke(ctx context.Context, token string) error {
	query := `INSERT IGNORE INTO revoked_tokens (token_hash, token, revoked_at) VALUES (?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, tokenKey(token), token, s.now().UTC()); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a record exists for the exact token string.
func (s *mariaDBStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_hash = ?)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, tokenKey(token)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking revocation: %w", err)
	}
	return exists, nil
}

// Find returns the stored record or ErrNotRevoked.
func (s *mariaDBStore) Find(ctx context.Context, token string) (*Record, error) {
	query := `SELECT token, revoked_at FROM revoked_tokens WHERE token_hash = ?`

	rec := &Record{}
	err := s.db.QueryRowContext(ctx, query, tokenKey(token)).Scan(&rec.Token, &rec.RevokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("finding revocation: %w", err)
	}
	return rec, nil
}
