// Package validation checks account input before it reaches the store.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxNameLength     = 100
	MaxEmailLength    = 254
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidatePassword enforces the length bounds; bcrypt ignores bytes past 72.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errors.New("La contraseña debe tener al menos 8 caracteres.")
	}
	if len(password) > MaxPasswordLength {
		return errors.New("La contraseña no puede superar los 72 bytes.")
	}
	return nil
}

// ValidateName requires a non-blank display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("El nombre es obligatorio.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errors.New("El nombre no puede superar los 100 caracteres.")
	}
	return nil
}

// ValidateEmail checks basic email format.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return errors.New("El correo electrónico no puede superar los 254 caracteres.")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("El formato del correo electrónico no es válido.")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
