// Package session holds the bearer token issued by the external auth
// collaborator. The client never verifies signatures; it only inspects the
// expiry claim so it can preempt a 401 and redirect to login early.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no access token set")
	ErrTokenExpired = errors.New("access token expired")
)

type Session struct {
	mu    sync.RWMutex
	token string
}

func New(token string) *Session {
	return &Session{token: token}
}

// SetToken replaces the current bearer token, e.g. after a fresh login.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Token returns the raw bearer token, empty when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Check reports whether the held token is usable. A token without an exp
// claim is treated as usable; the backend has the final say either way.
func (s *Session) Check(now time.Time) error {
	tok := s.Token()
	if tok == "" {
		return ErrNoToken
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		// Opaque (non-JWT) tokens pass through untouched.
		return nil
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if now.After(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}
