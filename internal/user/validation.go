package user

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation constants.
const (
	// MaxEmailLength is the maximum length of an email address (RFC 5321).
	MaxEmailLength = 254

	// MaxNameLength is the maximum length of a full name.
	MaxNameLength = 100
)

// NormalizeEmail trims and lowercases an address. It is the key form used
// everywhere in the directory and the company registry.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address (no display name).
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("%w: email exceeds %d characters", ErrInvalidEmail, MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateFullName checks an optional full name.
func ValidateFullName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}
