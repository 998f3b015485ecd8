// Package validation holds input validation shared by signup and profile
// handlers.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
	maxEmailLength    = 254
	minFullNameLength = 2
	maxFullNameLength = 120
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)+$`)

// ValidatePassword checks password strength: length bounds plus at least one
// uppercase letter, one lowercase letter, one digit and one symbol.
func ValidatePassword(password string) error {
	length := utf8.RuneCountInString(password)
	if length < minPasswordLength {
		return errors.New("password must be at least 12 characters")
	}
	if length > maxPasswordLength {
		return errors.New("password must be at most 128 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain an uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain a lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain a digit")
	}
	if !hasSpecial {
		return errors.New("password must contain a symbol")
	}
	return nil
}

// ValidateEmail checks basic address shape and length. This is intentionally
// stricter than RFC 5322; addresses that need quoting are not accepted.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return errors.New("email must be at most 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("email address is not valid")
	}
	return nil
}

// ValidateFullName checks a display name: length bounds and letters with
// common name punctuation only.
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < minFullNameLength {
		return errors.New("name must be at least 2 characters")
	}
	if length > maxFullNameLength {
		return errors.New("name must be at most 120 characters")
	}
	for _, r := range name {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' || r == '.' {
			continue
		}
		return errors.New("name contains unsupported characters")
	}
	return nil
}
