package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/authgate/internal/apperror"
)

var testSecret = []byte("test-secret-0123456789abcdef0123")

// --- Mock Repository ---

// mockUserRepo implements UserRepository for testing.
type mockUserRepo struct {
	createFn                  func(ctx context.Context, user *User) error
	findByIDFn                func(ctx context.Context, id string) (*User, error)
	findByEmailFn             func(ctx context.Context, email string) (*User, error)
	findByEmailWithPasswordFn func(ctx context.Context, email string) (*User, error)
	emailExistsFn             func(ctx context.Context, email string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmailWithPassword(ctx context.Context, email string) (*User, error) {
	if m.findByEmailWithPasswordFn != nil {
		return m.findByEmailWithPasswordFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFn != nil {
		return m.emailExistsFn(ctx, email)
	}
	return false, nil
}

// memoryUsers is a working in-memory UserRepository for flow tests.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user not found")
	}
	u.PasswordHash = ""
	return &u, nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := m.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (m *memoryUsers) FindByEmailWithPassword(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *memoryUsers) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// newTestCodec returns a codec with a fixed clock when now is non-zero.
func newTestCodec(t *testing.T, now time.Time) *TokenCodec {
	t.Helper()
	var opts []CodecOption
	if !now.IsZero() {
		opts = append(opts, WithClock(func() time.Time { return now }))
	}
	codec, err := NewTokenCodec(testSecret, DefaultTokenTTL, opts...)
	require.NoError(t, err)
	return codec
}

// fastHasher keeps bcrypt tests quick.
func fastHasher() PasswordHasher {
	return NewBcryptHasher(4)
}
