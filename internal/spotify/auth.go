package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAccountsBaseURL = "https://accounts.spotify.com"
	tokenEndpoint          = "/api/token"
	authorizeEndpoint      = "/authorize"
)

// Scopes requested during the authorization-code grant.
var Scopes = []string{
	"playlist-read-collaborative",
	"playlist-read-private",
	"user-follow-read",
	"user-library-read",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-playback-state",
	"user-read-private",
	"user-read-recently-played",
}

// AuthClient talks to the Spotify accounts service for token grants.
type AuthClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewAuthClient creates an accounts-service client. baseURL overrides the
// production host when non-empty (used by tests).
func NewAuthClient(baseURL, clientID, clientSecret string, logger *slog.Logger) *AuthClient {
	if baseURL == "" {
		baseURL = defaultAccountsBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// AuthorizeURL builds the URL the user must open to grant access.
func (a *AuthClient) AuthorizeURL(redirectURI string) string {
	query := url.Values{}
	query.Set("client_id", a.clientID)
	query.Set("response_type", "code")
	query.Set("redirect_uri", redirectURI)
	query.Set("scope", strings.Join(Scopes, " "))
	return a.baseURL + authorizeEndpoint + "?" + query.Encode()
}

// ExchangeCode trades an authorization code for an access + refresh token pair.
func (a *AuthClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	return a.tokenRequest(ctx, form)
}

// RefreshToken trades a refresh token for a fresh access token. Spotify may
// rotate the refresh token; the caller must check TokenResponse.RefreshToken.
func (a *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return a.tokenRequest(ctx, form)
}

func (a *AuthClient) tokenRequest(ctx context.Context, form url.Values) (*TokenResponse, error) {
	reqURL := a.baseURL + tokenEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.clientID, a.clientSecret)

	a.logger.Debug("token request", "grant", form.Get("grant_type"))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("token request failed", "error", err)
		return nil, ErrServerUnreachable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			return nil, fmt.Errorf("token grant rejected: %s: %s", payload.Error, payload.ErrorDescription)
		}
		return nil, fmt.Errorf("token grant rejected: status %d", resp.StatusCode)
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &token, nil
}
