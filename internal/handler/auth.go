package handler

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// TokenRegistry remembers the tokens issued by the login endpoint
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewTokenRegistry creates an empty registry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{tokens: make(map[string]struct{})}
}

// Issue records token as valid
func (r *TokenRegistry) Issue(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = struct{}{}
}

// Valid reports whether token was issued
func (r *TokenRegistry) Valid(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tokens[token]
	return ok
}

// RequireToken rejects requests without a bearer token issued by the registry
func RequireToken(registry *TokenRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || !registry.Valid(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
