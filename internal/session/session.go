// Package session holds the authentication token for the current user.
//
// A Session is created once at startup, loaded from the token file, and
// cleared on logout or when the remote store rejects the token. Components
// that keep per-user state subscribe with OnLogout and discard it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"todo/internal/service"
)

// expiryDelta treats a token as expired slightly early so a request does
// not race the deadline.
const expiryDelta = 10 * time.Second

// Session owns the current token. It implements oauth2.TokenSource.
type Session struct {
	path string
	now  func() time.Time

	mu        sync.RWMutex
	token     *oauth2.Token
	listeners []func()
}

// Open loads the session stored at path. A missing or unreadable token
// file yields an unauthenticated session.
func Open(path string) *Session {
	s := &Session{path: path, now: time.Now}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil || tok.AccessToken == "" {
		return s
	}
	s.token = &tok
	return s
}

// NewMemory returns an unauthenticated session that is never persisted.
func NewMemory() *Session {
	return &Session{now: time.Now}
}

// SetClock overrides the time source (for testing).
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// IsAuthenticated reports whether a usable token is held. A token whose
// access part expired is still usable when it carries a refresh token.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usable(s.token)
}

func (s *Session) usable(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}
	if tok.RefreshToken != "" || tok.Expiry.IsZero() {
		return true
	}
	return s.now().Add(expiryDelta).Before(tok.Expiry)
}

// Token returns the current token. The error wraps service.ErrAuth when
// there is no usable token.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, fmt.Errorf("%w: not logged in", service.ErrAuth)
	}
	if !s.usable(s.token) {
		return nil, fmt.Errorf("%w: session expired", service.ErrAuth)
	}
	tok := *s.token
	return &tok, nil
}

// Subject returns the user id carried in the token claims, if any.
func (s *Session) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	claims, ok := parseClaims(s.token.AccessToken)
	if !ok {
		return ""
	}
	for _, key := range []string{"userId", "user_id", "sub"} {
		if v, ok := claims[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Login validates creds when the backend needs them, asks auth for a
// token and stores it. Every failure other than validation wraps
// service.ErrAuth.
func (s *Session) Login(ctx context.Context, auth service.Authenticator, creds service.Credentials) error {
	if auth.CredentialsRequired() {
		if err := service.ValidateLogin(creds); err != nil {
			return err
		}
	}

	tok, err := auth.Login(ctx, creds)
	if err != nil {
		return authErr(err)
	}
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("%w: no token issued", service.ErrAuth)
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = tokenExpiry(tok.AccessToken)
	}
	return s.Save(tok)
}

// Register validates creds and creates an account. It does not log in.
func (s *Session) Register(ctx context.Context, auth service.Authenticator, creds service.Credentials) error {
	if auth.CredentialsRequired() {
		if err := service.ValidateRegistration(creds); err != nil {
			return err
		}
	}
	if err := auth.Register(ctx, creds); err != nil {
		return authErr(err)
	}
	return nil
}

// Save replaces the held token and writes it to the token file (mode 0600).
func (s *Session) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		data, err := json.MarshalIndent(tok, "", "  ")
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(s.path, data, 0600); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	cp := *tok
	s.token = &cp
	return nil
}

// Logout clears the token, removes the token file and notifies
// subscribers. It is a local operation.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = nil
	listeners := append([]func(){}, s.listeners...)
	var err error
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = fmt.Errorf("remove token: %w", rmErr)
		}
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return err
}

// Expire forces a logout after the remote store rejected the token. The
// session is unauthenticated even when the token file could not be removed.
func (s *Session) Expire() error {
	return s.Logout()
}

// OnLogout registers fn to run after every transition to unauthenticated.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func authErr(err error) error {
	if errors.Is(err, service.ErrAuth) {
		return err
	}
	return fmt.Errorf("%w: %w", service.ErrAuth, err)
}

// parseClaims reads the claims of a JWT without verifying its signature.
func parseClaims(raw string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// tokenExpiry returns the exp claim of a JWT access token, or the zero time
// for opaque tokens.
func tokenExpiry(raw string) time.Time {
	claims, ok := parseClaims(raw)
	if !ok {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
