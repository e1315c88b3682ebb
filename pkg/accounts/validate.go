package accounts

import (
	"strings"
	"unicode"

	"github.com/vidora/vidora/pkg/apperror"
)

// RegistrationInput holds the raw fields submitted at registration, before
// any validation.
type RegistrationInput struct {
	FullName string
	Email    string
	Username string
	Password string
}

// ValidateRegistration checks registration input shape and password strength.
// Rules apply in order and the first failing rule wins. The server rejects
// uppercase usernames rather than silently normalizing them.
func ValidateRegistration(in RegistrationInput) error {
	for _, field := range []string{in.FullName, in.Email, in.Username, in.Password} {
		if strings.TrimSpace(field) == "" {
			return apperror.BadRequest("all fields are required")
		}
	}

	if !strings.Contains(in.Email, "@") {
		return apperror.BadRequest("email must contain @")
	}

	if in.Username != strings.ToLower(in.Username) {
		return apperror.BadRequest("username must be lowercase")
	}

	for _, field := range []string{in.Username, in.Email, in.Password} {
		if strings.Contains(strings.TrimSpace(field), " ") {
			return apperror.BadRequest("spaces are not allowed")
		}
	}

	if !ValidPassword(in.Password) {
		return apperror.BadRequest(
			"password must be at least 5 characters with at least one letter and one digit")
	}

	return nil
}

// ValidPassword reports whether a password satisfies the strength policy:
// length >= 5, at least one letter, at least one digit.
func ValidPassword(password string) bool {
	if len(password) < 5 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
