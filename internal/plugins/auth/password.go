package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes passwords for storage and checks candidates against
// stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil on a match and ErrBadPassword on a mismatch. Any
	// other error means the stored hash could not be used.
	Compare(hash, password string) error
}

// argon2id parameters follow the OWASP recommendation: memory=64MB,
// iterations=3, parallelism=4.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB in KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16

	// Upper bounds accepted when reading a stored hash.
	argonMaxMemory = 1024 * 1024 // 1 GB in KiB
	argonMaxTime   = 16
)

var errUnknownHashFormat = errors.New("unknown password hash format")

// NewBcryptHasher returns a bcrypt hasher. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

// NewArgon2idHasher returns an argon2id hasher producing PHC-format strings.
func NewArgon2idHasher() PasswordHasher {
	return argon2idHasher{}
}

type bcryptHasher struct {
	cost int
}

func (h bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (h bcryptHasher) Compare(hash, password string) error {
	return comparePassword(hash, password)
}

type argon2idHasher struct{}

// Hash returns $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>.
func (argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (argon2idHasher) Compare(hash, password string) error {
	return comparePassword(hash, password)
}

// comparePassword checks password against a stored hash of either supported
// format, so switching PASSWORD_HASHER does not lock out existing accounts.
func comparePassword(hash, password string) error {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return compareArgon2id(hash, password)
	case strings.HasPrefix(hash, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrBadPassword
		}
		return err
	default:
		return errUnknownHashFormat
	}
}

func compareArgon2id(encoded, password string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return errUnknownHashFormat
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return fmt.Errorf("parsing argon2id params: %w", err)
	}
	if iterations == 0 || iterations > argonMaxTime || parallelism == 0 || memory == 0 || memory > argonMaxMemory {
		return errUnknownHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("decoding argon2id salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("decoding argon2id hash: %w", err)
	}
	if len(expected) == 0 {
		return errUnknownHashFormat
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	if subtle.ConstantTimeCompare(expected, computed) != 1 {
		return ErrBadPassword
	}
	return nil
}
