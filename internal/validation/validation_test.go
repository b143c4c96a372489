package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIP(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"8.8.8.8", true},
		{"255.255.255.255", true},
		{"2001:4860:4860::8888", true},
		{"::1", true},
		{"", false},
		{"256.1.1.1", false},
		{"8.8.8", false},
		{"example.com", false},
		{" 8.8.8.8", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidIP(tt.input))
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		password    string
		expected    string
		expectError bool
	}{
		{name: "valid", email: " admin@example.com ", password: "secret", expected: "admin@example.com"},
		{name: "blank email", email: "   ", password: "secret", expectError: true},
		{name: "empty password", email: "admin@example.com", password: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ValidateCredentials(tt.email, tt.password)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, c.Email)
		})
	}
}
