package service

import (
	"context"
	"errors"
	"fmt"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/validation"
)

var (
	// ErrMissingCredentials is returned when email or password is blank.
	ErrMissingCredentials = errors.New(MsgMissingFields)
	// ErrAlreadySignedIn is returned by Login while a session is active.
	ErrAlreadySignedIn = errors.New("service: already signed in")
	// ErrNotSignedIn is returned by RequireSession without a session.
	ErrNotSignedIn = errors.New("service: not signed in")
)

// LoginError carries the message shown for a rejected login.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

// Authenticator submits credentials to the auth service.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.LoginResponse, error)
}

// SessionStore is the persisted sign-in state.
type SessionStore interface {
	SignIn(ctx context.Context, token string, user models.User) error
	SignOut(ctx context.Context)
	Authenticated() bool
}

// LoginService signs users in and out and guards protected operations.
type LoginService struct {
	auth    Authenticator
	session SessionStore
}

// NewLoginService creates a new login service
func NewLoginService(auth Authenticator, session SessionStore) *LoginService {
	return &LoginService{auth: auth, session: session}
}

// Login validates the form, calls the auth service and stores the session.
func (s *LoginService) Login(ctx context.Context, email, password string) (models.User, error) {
	if s.session.Authenticated() {
		return models.User{}, ErrAlreadySignedIn
	}

	creds, err := validation.ValidateCredentials(email, password)
	if err != nil {
		return models.User{}, ErrMissingCredentials
	}

	resp, err := s.auth.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return models.User{}, &LoginError{Message: userMessage(err, MsgInvalidLogin), Err: err}
	}
	if !resp.Success || resp.Data == nil {
		msg := resp.Message
		if msg == "" {
			msg = MsgLoginFailed
		}
		return models.User{}, &LoginError{Message: msg}
	}

	if err := s.session.SignIn(ctx, resp.Data.Token, resp.Data.User); err != nil {
		return models.User{}, fmt.Errorf("service: failed to store session: %w", err)
	}
	return resp.Data.User, nil
}

// Logout ends the session.
func (s *LoginService) Logout(ctx context.Context) {
	s.session.SignOut(ctx)
}

// RequireSession returns ErrNotSignedIn when no session is active.
func (s *LoginService) RequireSession() error {
	if !s.session.Authenticated() {
		return ErrNotSignedIn
	}
	return nil
}
