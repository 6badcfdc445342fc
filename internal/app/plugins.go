package app

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/authgate/internal/config"
	"github.com/keyxmakerx/authgate/internal/plugins/auth"
	"github.com/keyxmakerx/authgate/internal/plugins/revocations"
)

// AuthDeps are the stores and primitives the auth plugin is built from.
type AuthDeps struct {
	Users       auth.UserRepository
	Revocations revocations.Store
	Codec       *auth.TokenCodec
	Hasher      auth.PasswordHasher
}

// BuildAuthDeps constructs the auth plugin's dependencies from configuration.
// A missing signing secret is an error; callers treat it as fatal.
func BuildAuthDeps(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*AuthDeps, error) {
	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token codec: %w", err)
	}

	store, err := newRevocationStore(cfg.Auth.RevocationBackend, db, rdb)
	if err != nil {
		return nil, err
	}

	var hasher auth.PasswordHasher
	switch cfg.Auth.PasswordHasher {
	case config.HasherArgon2id:
		hasher = auth.NewArgon2idHasher()
	default:
		hasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	}

	var users auth.UserRepository
	if db != nil {
		users = auth.NewUserRepository(db)
	}

	return &AuthDeps{
		Users:       users,
		Revocations: store,
		Codec:       codec,
		Hasher:      hasher,
	}, nil
}

func newRevocationStore(backend string, db *sql.DB, rdb *redis.Client) (revocations.Store, error) {
	switch backend {
	case config.RevocationRedis:
		if rdb == nil {
			return nil, errors.New("redis revocation backend selected but no redis client configured")
		}
		return revocations.NewRedisStore(rdb), nil
	case config.RevocationMemory:
		return revocations.NewMemoryStore(), nil
	case config.RevocationMariaDB, "":
		if db == nil {
			return nil, errors.New("mariadb revocation backend selected but no database configured")
		}
		return revocations.NewMariaDBStore(db), nil
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", backend)
	}
}
