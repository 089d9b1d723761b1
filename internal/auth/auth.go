// Package auth holds the access credential and refreshes it on demand.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mdheller/spotify-tui/internal/spotify"
)

// ExpiryMargin is subtracted from the reported token lifetime so a request is
// never issued with a token that expires while in flight.
const ExpiryMargin = 10 * time.Second

// Credential is an access token plus the instant it stops being usable.
type Credential struct {
	AccessToken string
	Expiry      time.Time
}

// Valid reports whether the credential may still authorize requests at now.
// It is false strictly after Expiry.
func (c Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && !now.After(c.Expiry)
}

// CredentialFromToken converts a token grant into a credential, applying the
// expiry margin relative to now.
func CredentialFromToken(token *spotify.TokenResponse, now time.Time) Credential {
	return Credential{
		AccessToken: token.AccessToken,
		Expiry:      now.Add(time.Duration(token.ExpiresIn)*time.Second - ExpiryMargin),
	}
}

// TokenSource performs the remote refresh grant. Implemented by
// *spotify.AuthClient.
type TokenSource interface {
	RefreshToken(ctx context.Context, refreshToken string) (*spotify.TokenResponse, error)
}

// Manager owns the current credential and the refresh token needed to renew
// it. It is confined to the dispatcher goroutine except for Valid/Current,
// which the render loop calls from its tick hook; those take the same lock as
// Refresh.
type Manager struct {
	tokens TokenSource
	logger *slog.Logger

	mu           sync.RWMutex
	refreshToken string
	cred         Credential
}

// NewManager creates a credential manager seeded with an initial credential.
func NewManager(tokens TokenSource, refreshToken string, initial Credential, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		tokens:       tokens,
		logger:       logger,
		refreshToken: refreshToken,
		cred:         initial,
	}
}

// Current returns the held credential. It may be stale; callers decide via
// Valid whether a refresh is due.
func (m *Manager) Current() Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

// Valid reports whether the held credential is usable at now.
func (m *Manager) Valid(now time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred.Valid(now)
}

// RefreshTokenValue returns the current refresh token, for persisting across
// runs.
func (m *Manager) RefreshTokenValue() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshToken
}

// Refresh performs the token exchange and replaces the held credential. On
// failure the stale credential is kept so requests can keep going out until
// the next check; the error is returned for the caller to surface.
func (m *Manager) Refresh(ctx context.Context) (Credential, error) {
	refreshToken := m.RefreshTokenValue()
	if refreshToken == "" {
		return m.Current(), fmt.Errorf("no refresh token available")
	}

	token, err := m.tokens.RefreshToken(ctx, refreshToken)
	if err != nil {
		m.logger.Warn("credential refresh failed, keeping stale token", "error", err)
		return m.Current(), fmt.Errorf("refresh credential: %w", err)
	}

	m.mu.Lock()
	m.cred = CredentialFromToken(token, time.Now())
	if token.RefreshToken != "" {
		// Spotify rotates refresh tokens on some grants.
		m.refreshToken = token.RefreshToken
	}
	cred := m.cred
	m.mu.Unlock()

	m.logger.Info("credential refreshed", "expiry", cred.Expiry)
	return cred, nil
}
