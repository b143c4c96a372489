// Package validation checks user input before any request is made.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Credentials is the login form input.
type Credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// IsValidIP reports whether s is an IPv4 or IPv6 address.
func IsValidIP(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	return instance().Var(s, "ip") == nil
}

// ValidateCredentials trims the email and requires both fields.
func ValidateCredentials(email, password string) (Credentials, error) {
	c := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := instance().Struct(c); err != nil {
		return c, err
	}
	return c, nil
}
