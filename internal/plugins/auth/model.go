// Package auth handles user registration, credential login, token issuance
// and per-request authentication for authgate. Sessions are stateless signed
// tokens; logout records the token in the revocation store so it is refused
// before its natural expiry.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"time"
)

// FullName is the user's display name. LastName is optional.
type FullName struct {
	FirstName string  `json:"firstname"`
	LastName  *string `json:"lastname,omitempty"`
}

// User represents a registered account. PasswordHash is only populated on the
// login comparison path and is never serialized.
type User struct {
	ID           string    `json:"id"`
	FullName     FullName  `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	SocketID     *string   `json:"socket_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the registration payload. The nested fullname shape
// matches the User JSON.
type RegisterRequest struct {
	FullName struct {
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
	} `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the input for creating a new user. An empty LastName
// means no last name.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// LoginInput is the input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned by a successful login or registration.
type LoginResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Identity is the authenticated context of one request: the resolved user
// and the raw token that proved it. Lives only for the request.
type Identity struct {
	User  *User
	Token string
}
