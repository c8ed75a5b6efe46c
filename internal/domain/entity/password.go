package entity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Password policy constraints.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 16
)

// passwordCharset allows ASCII letters, digits and the fixed punctuation set.
var passwordCharset = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]+$`)

const birthDateLayout = "20060102"

// Password is the encoded (hashed) password held by a User.
// It never carries a raw candidate.
type Password struct {
	value string
}

// ValidatePassword checks a raw candidate against the password policy.
// Checks run in a fixed order (length, format, birth date); the first failure wins.
func ValidatePassword(raw string, birthDate time.Time) error {
	n := utf8.RuneCountInString(raw)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return ErrInvalidPasswordLength
	}
	if !passwordCharset.MatchString(raw) {
		return ErrInvalidPasswordFormat
	}
	if strings.Contains(raw, birthDate.Format(birthDateLayout)) {
		return ErrPasswordContainsBirthDate
	}
	return nil
}

// PasswordFromEncoded wraps a value produced by the password encoder.
// It performs no validation; callers run ValidatePassword on the raw value first.
func PasswordFromEncoded(encoded string) Password {
	return Password{value: encoded}
}

// Value returns the encoded representation.
func (p Password) Value() string {
	return p.value
}

// String keeps the hash out of formatted logs.
func (p Password) String() string {
	return "[encoded]"
}
