package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// Machine-parsable validation codes. Clients branch on the prefix to localize
// the message, so these strings are a wire contract.
const (
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeInvalidNickname    = "INVALID_NICKNAME"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeEmailExists        = "EMAIL_EXISTS"
)

// ValidationError is a rejected-input failure whose Error() renders as
// "CODE: human readable detail".
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// NewValidationError builds a ValidationError with the given code prefix.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

var nicknameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateNickname enforces 3-20 characters from [A-Za-z0-9_].
func ValidateNickname(nickname string) error {
	switch {
	case strings.TrimSpace(nickname) == "":
		return NewValidationError(CodeInvalidNickname, "Nickname cannot be empty")
	case len(nickname) < 3:
		return NewValidationError(CodeInvalidNickname, "Nickname must be at least 3 characters long")
	case len(nickname) > 20:
		return NewValidationError(CodeInvalidNickname, "Nickname cannot exceed 20 characters")
	case !nicknameRegexp.MatchString(nickname):
		return NewValidationError(CodeInvalidNickname, "Nickname can only contain letters (a-z, A-Z), digits (0-9), and underscores (_)")
	}
	return nil
}

// ValidateEmail performs the intentionally weak format check: one "@", a ".",
// non-empty local and domain parts. Not RFC-compliant on purpose.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError(CodeInvalidEmail, "Email cannot be empty")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return NewValidationError(CodeInvalidEmail, "Email must be in valid format (e.g., user@example.com)")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return NewValidationError(CodeInvalidEmail, "Email must be in valid format (e.g., user@example.com)")
	}
	return nil
}

// ValidatePassword enforces minimum strength: at least 10 characters with one
// lowercase letter, one uppercase letter, one digit, and one special character.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return NewValidationError(CodeWeakPassword, "Password cannot be empty")
	}
	if len(password) < 10 {
		return NewValidationError(CodeWeakPassword, "Password must be at least 10 characters long")
	}

	var lower, upper, digit, special bool
	for _, c := range password {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		default:
			special = true
		}
	}

	switch {
	case !lower:
		return NewValidationError(CodeWeakPassword, "Password must contain at least one lowercase letter")
	case !upper:
		return NewValidationError(CodeWeakPassword, "Password must contain at least one uppercase letter")
	case !digit:
		return NewValidationError(CodeWeakPassword, "Password must contain at least one digit")
	case !special:
		return NewValidationError(CodeWeakPassword, "Password must contain at least one special character")
	}
	return nil
}
