package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"ipgeo-client/internal/models"

	"github.com/google/uuid"
)

// StaticAuthService accepts a single configured account. It backs the dev
// server's login endpoint.
type StaticAuthService struct {
	email    string
	password string
	newToken func() string
}

// NewStaticAuthService creates an auth service for one account
func NewStaticAuthService(email, password string) *StaticAuthService {
	return &StaticAuthService{
		email:    email,
		password: password,
		newToken: uuid.NewString,
	}
}

// Authenticate returns a fresh token and the user when the credentials match.
func (s *StaticAuthService) Authenticate(_ context.Context, email, password string) (*models.LoginData, bool) {
	if s.password == "" {
		return nil, false
	}
	emailOK := strings.EqualFold(strings.TrimSpace(email), s.email)
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !emailOK || !passOK {
		return nil, false
	}
	return &models.LoginData{
		Token: s.newToken(),
		User:  models.User{Email: s.email},
	}, true
}
