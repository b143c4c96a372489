package auth

import (
	"context"
	"testing"

	"ipgeo-client/internal/models"
	"ipgeo-client/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Restore(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		user          string
		authenticated bool
	}{
		{name: "token and user", token: "tok", user: `{"email":"a@b.c"}`, authenticated: true},
		{name: "token only", token: "tok", authenticated: false},
		{name: "user only", user: `{"email":"a@b.c"}`, authenticated: false},
		{name: "malformed user", token: "tok", user: "{", authenticated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemory()
			if tt.token != "" {
				require.NoError(t, kv.Set(ctx, TokenKey, tt.token))
			}
			if tt.user != "" {
				require.NoError(t, kv.Set(ctx, UserKey, tt.user))
			}

			s := NewSession(kv, zerolog.Nop())
			s.Restore(ctx)

			assert.Equal(t, tt.authenticated, s.Authenticated())
			_, ok := s.User()
			assert.Equal(t, tt.authenticated, ok)
		})
	}
}

func TestSession_SignInSignOut(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewSession(kv, zerolog.Nop())

	require.NoError(t, s.SignIn(ctx, "tok", models.User{Email: "admin@example.com"}))
	assert.Equal(t, "tok", s.Token())

	restored := NewSession(kv, zerolog.Nop())
	restored.Restore(ctx)
	user, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", user.Email)

	s.SignOut(ctx)
	assert.False(t, s.Authenticated())
	_, ok, err := kv.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = kv.Get(ctx, UserKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
