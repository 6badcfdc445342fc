package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(in *RegisterInput)
		wantField string
		wantCode  string
	}{
		{"valid", func(in *RegisterInput) {}, "", ""},
		{"no last name", func(in *RegisterInput) { in.LastName = "" }, "", ""},
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, "firstname", CodeRequired},
		{"short first name", func(in *RegisterInput) { in.FirstName = "Al" }, "firstname", CodeMinLength},
		{"long first name", func(in *RegisterInput) { in.FirstName = strings.Repeat("a", 101) }, "firstname", CodeMaxLength},
		{"two multibyte chars", func(in *RegisterInput) { in.FirstName = "Ål" }, "firstname", CodeMinLength},
		{"two cjk chars", func(in *RegisterInput) { in.FirstName = "李明" }, "firstname", CodeMinLength},
		{"three multibyte chars", func(in *RegisterInput) { in.FirstName = "Åsa" }, "", ""},
		{"long cjk name within limit", func(in *RegisterInput) { in.FirstName = strings.Repeat("李", 40) }, "", ""},
		{"cjk name over limit", func(in *RegisterInput) { in.FirstName = strings.Repeat("李", 101) }, "firstname", CodeMaxLength},
		{"invalid utf-8 first name", func(in *RegisterInput) { in.FirstName = "Zo\xc3" }, "firstname", CodeFormat},
		{"invalid utf-8 last name", func(in *RegisterInput) { in.LastName = "Smi\xfft" }, "lastname", CodeFormat},
		{"invalid utf-8 email", func(in *RegisterInput) { in.Email = "al\xc3ce@example.com" }, "email", CodeFormat},
		{"short last name", func(in *RegisterInput) { in.LastName = "Li" }, "lastname", CodeMinLength},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email", CodeRequired},
		{"short email", func(in *RegisterInput) { in.Email = "a@b" }, "email", CodeMinLength},
		{"bad email", func(in *RegisterInput) { in.Email = "alice.example.com" }, "email", CodeFormat},
		{"email without tld", func(in *RegisterInput) { in.Email = "alice@example" }, "email", CodeFormat},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, "password", CodeRequired},
		{"long password", func(in *RegisterInput) { in.Password = strings.Repeat("p", 73) }, "password", CodeMaxLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := ValidateRegistration(in)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.True(t, vErr.Has(tt.wantField, tt.wantCode), "got %v", vErr.Fields)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "firstname", Code: CodeMinLength, Message: "too short"},
		{Field: "email", Code: CodeFormat, Message: "bad"},
	}}
	assert.Equal(t, "validation failed: firstname: too short; email: bad", err.Error())
	assert.False(t, err.IsDuplicate())
}
