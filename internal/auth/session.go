// Package auth holds the signed-in session and the auth service client.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/storage"

	"github.com/rs/zerolog"
)

// Storage keys of the persisted session.
const (
	TokenKey = "geoclient_token"
	UserKey  = "geoclient_user"
)

// Session is the current sign-in state, persisted in a key-value store.
type Session struct {
	mu    sync.RWMutex
	kv    storage.KeyValue
	log   zerolog.Logger
	token string
	user  *models.User
}

// NewSession returns a signed-out session on kv. Call Restore to hydrate it.
func NewSession(kv storage.KeyValue, logger zerolog.Logger) *Session {
	return &Session{kv: kv, log: logger}
}

// Restore reads the persisted token and user. Both must be present and the
// user must decode, otherwise the session stays signed out.
func (s *Session) Restore(ctx context.Context) {
	token, okToken, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("auth: read token failed")
		return
	}
	rawUser, okUser, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("auth: read user failed")
		return
	}
	if !okToken || !okUser || token == "" || rawUser == "" {
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.log.Warn().Err(err).Msg("auth: stored user is malformed")
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
}

// SignIn stores the token and user.
func (s *Session) SignIn(ctx context.Context, token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("auth: encode user: %w", err)
	}
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("auth: store token: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("auth: store user: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// SignOut forgets the session. Storage failures are logged; the in-memory
// session is cleared regardless.
func (s *Session) SignOut(ctx context.Context) {
	if err := s.kv.Remove(ctx, TokenKey); err != nil {
		s.log.Warn().Err(err).Msg("auth: remove token failed")
	}
	if err := s.kv.Remove(ctx, UserKey); err != nil {
		s.log.Warn().Err(err).Msg("auth: remove user failed")
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}
