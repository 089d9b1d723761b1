package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mdheller/spotify-tui/internal/log"
	"github.com/mdheller/spotify-tui/internal/spotify"
)

type stubTokens struct {
	token *spotify.TokenResponse
	err   error
	calls int
	got   string
}

func (s *stubTokens) RefreshToken(ctx context.Context, refreshToken string) (*spotify.TokenResponse, error) {
	s.calls++
	s.got = refreshToken
	return s.token, s.err
}

func TestCredentialValidBoundary(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Credential{AccessToken: "tok", Expiry: expiry}

	if !c.Valid(expiry.Add(-time.Second)) {
		t.Fatal("Valid before expiry = false, want true")
	}
	if !c.Valid(expiry) {
		t.Fatal("Valid at expiry = false, want true")
	}
	if c.Valid(expiry.Add(time.Nanosecond)) {
		t.Fatal("Valid after expiry = true, want false")
	}
}

func TestCredentialValidRequiresToken(t *testing.T) {
	c := Credential{Expiry: time.Now().Add(time.Hour)}
	if c.Valid(time.Now()) {
		t.Fatal("empty access token reported valid")
	}
}

func TestCredentialFromTokenAppliesMargin(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := &spotify.TokenResponse{AccessToken: "tok", ExpiresIn: 3600}

	c := CredentialFromToken(token, now)

	want := now.Add(time.Hour - ExpiryMargin)
	if !c.Expiry.Equal(want) {
		t.Fatalf("Expiry = %v, want %v", c.Expiry, want)
	}
}

func TestManagerRefreshReplacesCredential(t *testing.T) {
	tokens := &stubTokens{token: &spotify.TokenResponse{AccessToken: "fresh", ExpiresIn: 3600}}
	m := NewManager(tokens, "refresh-1", Credential{AccessToken: "stale"}, log.NullLogger())

	cred, err := m.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if cred.AccessToken != "fresh" {
		t.Fatalf("AccessToken = %q, want fresh", cred.AccessToken)
	}
	if !cred.Valid(time.Now()) {
		t.Fatal("refreshed credential invalid, want an hour of validity")
	}
	if tokens.got != "refresh-1" {
		t.Fatalf("refresh token sent = %q, want refresh-1", tokens.got)
	}
	if got := m.Current(); got.AccessToken != "fresh" {
		t.Fatalf("Current = %q, want the replaced credential", got.AccessToken)
	}
}

func TestManagerRefreshRotatesRefreshToken(t *testing.T) {
	tokens := &stubTokens{token: &spotify.TokenResponse{
		AccessToken:  "fresh",
		ExpiresIn:    3600,
		RefreshToken: "refresh-2",
	}}
	m := NewManager(tokens, "refresh-1", Credential{}, log.NullLogger())

	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if got := m.RefreshTokenValue(); got != "refresh-2" {
		t.Fatalf("RefreshTokenValue = %q, want the rotated token", got)
	}
}

func TestManagerRefreshFailureKeepsStaleCredential(t *testing.T) {
	boom := errors.New("grant revoked")
	tokens := &stubTokens{err: boom}
	stale := Credential{AccessToken: "stale", Expiry: time.Now().Add(time.Minute)}
	m := NewManager(tokens, "refresh-1", stale, log.NullLogger())

	_, err := m.Refresh(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Refresh error = %v, want wrapped %v", err, boom)
	}
	if got := m.Current(); got.AccessToken != "stale" {
		t.Fatalf("Current = %q, want the stale credential kept", got.AccessToken)
	}
}

func TestManagerRefreshWithoutRefreshToken(t *testing.T) {
	tokens := &stubTokens{}
	m := NewManager(tokens, "", Credential{}, log.NullLogger())

	if _, err := m.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh without a refresh token succeeded, want error")
	}
	if tokens.calls != 0 {
		t.Fatalf("remote refresh called %d times, want 0", tokens.calls)
	}
}

func TestManagerValidTracksHeldCredential(t *testing.T) {
	now := time.Now()
	m := NewManager(&stubTokens{}, "r", Credential{AccessToken: "tok", Expiry: now.Add(time.Minute)}, log.NullLogger())

	if !m.Valid(now) {
		t.Fatal("Valid = false for a live credential")
	}
	if m.Valid(now.Add(2 * time.Minute)) {
		t.Fatal("Valid = true past expiry")
	}
}
