package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/authgate/internal/apperror"
	"github.com/keyxmakerx/authgate/internal/plugins/revocations"
	"github.com/keyxmakerx/authgate/internal/sanitize"
)

// AuthService defines the business logic contract for credentials.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	// Register validates input, creates the account and returns it. Returns
	// a *ValidationError for bad input or a taken email.
	Register(ctx context.Context, input RegisterInput) (*User, error)
	// Login checks credentials and issues a token. Returns ErrNoSuchUser or
	// ErrBadPassword on failure.
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// Logout revokes token. Revoking an already revoked token succeeds.
	Logout(ctx context.Context, token string) error
	// Profile returns the user with the given id.
	Profile(ctx context.Context, userID string) (*User, error)
}

// authService implements AuthService.
type authService struct {
	repo    UserRepository
	revoked revocations.Store
	codec   *TokenCodec
	hasher  PasswordHasher
	now     func() time.Time
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, revoked revocations.Store, codec *TokenCodec, hasher PasswordHasher) AuthService {
	return &authService{
		repo:    repo,
		revoked: revoked,
		codec:   codec,
		hasher:  hasher,
		now:     time.Now,
	}
}

// Register creates a new user account. Validation runs before any store
// access; the email pre-check runs before the expensive hash.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.FirstName = sanitize.PlainText(input.FirstName)
	input.LastName = sanitize.PlainText(input.LastName)
	input.Email = normalizeEmail(input.Email)

	if err := ValidateRegistration(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return nil, duplicateEmailError()
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		FullName:     FullName{FirstName: input.FirstName},
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if input.LastName != "" {
		lastName := input.LastName
		user.FullName.LastName = &lastName
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, duplicateEmailError()
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates a user by email and password and issues a token.
func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.repo.FindByEmailWithPassword(ctx, normalizeEmail(input.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrNoSuchUser
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		if errors.Is(err, ErrBadPassword) {
			return nil, ErrBadPassword
		}
		return nil, fmt.Errorf("comparing password: %w", err)
	}
	user.PasswordHash = ""

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// Logout records token in the revocation store.
func (s *authService) Logout(ctx context.Context, token string) error {
	if err := s.revoked.Revoke(ctx, token); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	slog.Info("token revoked")
	return nil
}

// Profile returns the user with the given id.
func (s *authService) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func duplicateEmailError() *ValidationError {
	return &ValidationError{Fields: []FieldError{{
		Field:   "email",
		Code:    CodeDuplicate,
		Message: "an account with this email already exists",
	}}}
}
