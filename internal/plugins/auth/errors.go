package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateEmail is returned by UserRepository.Create when the email is
// already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// Field error codes carried in ValidationError.
const (
	CodeRequired  = "required"
	CodeMinLength = "min_length"
	CodeMaxLength = "max_length"
	CodeFormat    = "format"
	CodeDuplicate = "duplicate"
)

// FieldError describes one failing input field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError lists every failing field of a registration attempt.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed with the given code.
func (e *ValidationError) Has(field, code string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Code == code {
			return true
		}
	}
	return false
}

// IsDuplicate reports whether the only problem is an already registered email.
func (e *ValidationError) IsDuplicate() bool {
	return len(e.Fields) == 1 && e.Fields[0].Code == CodeDuplicate
}

// AuthError is a failed credential check.
type AuthError struct {
	Kind string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Kind
}

// Login failure kinds. Clients see one generic message for both.
var (
	ErrNoSuchUser  = &AuthError{Kind: "no_such_user"}
	ErrBadPassword = &AuthError{Kind: "bad_password"}
)

// TokenErrorKind classifies why a token failed verification.
type TokenErrorKind string

const (
	TokenMalformed    TokenErrorKind = "malformed"
	TokenBadSignature TokenErrorKind = "bad_signature"
	TokenExpired      TokenErrorKind = "expired"
)

// TokenError is returned by TokenCodec.Verify.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
	}
	return "token " + string(e.Kind)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// RejectReason is why the gate refused a request.
type RejectReason string

const (
	RejectNoToken      RejectReason = "no_token"
	RejectRevoked      RejectReason = "revoked"
	RejectInvalidToken RejectReason = "invalid_token"
	RejectUserMissing  RejectReason = "user_missing"
)

// Rejection is the gate's negative outcome. TokenKind is set only for
// RejectInvalidToken. The reason is for logs; clients get one generic 401.
type Rejection struct {
	Reason    RejectReason
	TokenKind TokenErrorKind
}

func (r *Rejection) Error() string {
	if r.TokenKind != "" {
		return fmt.Sprintf("request rejected: %s (%s)", r.Reason, r.TokenKind)
	}
	return "request rejected: " + string(r.Reason)
}
