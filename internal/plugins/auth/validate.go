package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits. Name and email limits count characters; the password limit
// counts bytes.
const (
	minNameLen     = 3
	maxNameLen     = 100
	minEmailLen    = 5
	maxEmailLen    = 255
	maxPasswordLen = 72 // bcrypt ignores everything past 72 bytes.
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// normalizeEmail lower-cases and trims an address for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks every field of input and returns a
// *ValidationError listing all failures, or nil. Input is expected to be
// trimmed already.
func ValidateRegistration(input RegisterInput) error {
	var fields []FieldError
	add := func(field, code, msg string) {
		fields = append(fields, FieldError{Field: field, Code: code, Message: msg})
	}

	switch {
	case input.FirstName == "":
		add("firstname", CodeRequired, "firstname is required")
	case !utf8.ValidString(input.FirstName):
		add("firstname", CodeFormat, "firstname contains invalid characters")
	case utf8.RuneCountInString(input.FirstName) < minNameLen:
		add("firstname", CodeMinLength, fmt.Sprintf("firstname must be at least %d characters long", minNameLen))
	case utf8.RuneCountInString(input.FirstName) > maxNameLen:
		add("firstname", CodeMaxLength, fmt.Sprintf("firstname must be at most %d characters long", maxNameLen))
	}

	if input.LastName != "" {
		switch {
		case !utf8.ValidString(input.LastName):
			add("lastname", CodeFormat, "lastname contains invalid characters")
		case utf8.RuneCountInString(input.LastName) < minNameLen:
			add("lastname", CodeMinLength, fmt.Sprintf("lastname must be at least %d characters long", minNameLen))
		case utf8.RuneCountInString(input.LastName) > maxNameLen:
			add("lastname", CodeMaxLength, fmt.Sprintf("lastname must be at most %d characters long", maxNameLen))
		}
	}

	switch {
	case input.Email == "":
		add("email", CodeRequired, "email is required")
	case !utf8.ValidString(input.Email):
		add("email", CodeFormat, "please enter a valid email address")
	case utf8.RuneCountInString(input.Email) < minEmailLen:
		add("email", CodeMinLength, fmt.Sprintf("email must be at least %d characters long", minEmailLen))
	case utf8.RuneCountInString(input.Email) > maxEmailLen:
		add("email", CodeMaxLength, fmt.Sprintf("email must be at most %d characters long", maxEmailLen))
	case !emailPattern.MatchString(input.Email):
		add("email", CodeFormat, "please enter a valid email address")
	}

	switch {
	case input.Password == "":
		add("password", CodeRequired, "password is required")
	case len(input.Password) > maxPasswordLen:
		add("password", CodeMaxLength, fmt.Sprintf("password must be at most %d bytes", maxPasswordLen))
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
