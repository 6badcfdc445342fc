package revocations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces revocation keys in a shared Redis.
const redisKeyPrefix = "revoked:"

// redisStore keeps one key per revoked token, valued with the revocation
// time in RFC 3339. Keys carry no TTL.
type redisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisStore creates a revocation store backed by Redis.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb, now: time.Now}
}

func (s *redisStore) key(token string) string {
	return redisKeyPrefix + tokenKey(token)
}

// Revoke sets the key only if absent so the first revocation time wins.
func (s *redisStore) Revoke(ctx context.Context, token string) error {
	stamp := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.rdb.SetNX(ctx, s.key(token), stamp, 0).Err(); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func (s *redisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("checking revocation: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) Find(ctx context.Context, token string) (*Record, error) {
	stamp, err := s.rdb.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("finding revocation: %w", err)
	}

	revokedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("parsing revocation time: %w", err)
	}
	return &Record{Token: token, RevokedAt: revokedAt}, nil
}
