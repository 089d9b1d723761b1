package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.spotify.com/v1"
	defaultTimeout    = 30 * time.Second
	userAgent         = "spotify-tui/1.0"
)

// apiError is the error envelope the Web API returns on non-2xx responses.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Spotify Web API. The access token may be swapped at any
// time via SetAccessToken; requests already in flight keep the token they were
// issued with.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.RWMutex
	accessToken string
}

// NewClient creates a Web API client. baseURL overrides the production API
// host when non-empty (used by tests).
func NewClient(baseURL, accessToken string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:      logger,
		accessToken: accessToken,
	}
}

// SetAccessToken replaces the bearer token used for subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// doRequest performs an authenticated request and decodes the JSON body into
// dest. A 204 leaves dest untouched and returns errNoContent.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, dest any) error {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token())
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("spotify request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("spotify request failed", "path", path, "error", err)
		return ErrServerUnreachable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return errNoContent
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrAuthFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 300:
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("spotify api: %s (status %d)", apiErr.Error.Message, resp.StatusCode)
		}
		c.logger.Error("spotify request error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("spotify api: unexpected status %d", resp.StatusCode)
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUserPlaylists fetches a page of the user's playlists.
func (c *Client) CurrentUserPlaylists(ctx context.Context, limit, offset int) (*Page[Playlist], error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page Page[Playlist]
	if err := c.doRequest(ctx, http.MethodGet, "/me/playlists", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Devices lists the playback devices registered with the account.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var payload DeviceList
	if err := c.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Devices, nil
}

// CurrentPlayback fetches the current playback context. A nil context with a
// nil error means nothing is playing on any device.
func (c *Client) CurrentPlayback(ctx context.Context) (*PlaybackContext, error) {
	var playback PlaybackContext
	err := c.doRequest(ctx, http.MethodGet, "/me/player", nil, &playback)
	if err == errNoContent {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &playback, nil
}

// SavedTracksContains reports, per track ID, whether the track is in the
// user's saved library. The result slice is parallel to ids.
func (c *Client) SavedTracksContains(ctx context.Context, ids []string) ([]bool, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))

	var saved []bool
	if err := c.doRequest(ctx, http.MethodGet, "/me/tracks/contains", query, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// PlaylistTracks fetches a page of tracks from a playlist.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*Page[PlaylistTrack], error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page Page[PlaylistTrack]
	path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := c.doRequest(ctx, http.MethodGet, path, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SavedTracks fetches a page of the user's saved-library tracks.
func (c *Client) SavedTracks(ctx context.Context, limit, offset int) (*Page[SavedTrack], error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var page Page[SavedTrack]
	if err := c.doRequest(ctx, http.MethodGet, "/me/tracks", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// search performs a single-category /search request. Each category arrives in
// its own envelope key, so the caller supplies the envelope to decode into.
func (c *Client) search(ctx context.Context, term, kind string, limit int, dest any) error {
	query := url.Values{}
	query.Set("q", term)
	query.Set("type", kind)
	query.Set("limit", strconv.Itoa(limit))
	return c.doRequest(ctx, http.MethodGet, "/search", query, dest)
}

// SearchTracks runs a track-category search.
func (c *Client) SearchTracks(ctx context.Context, term string, limit int) (*Page[Track], error) {
	var envelope struct {
		Tracks Page[Track] `json:"tracks"`
	}
	if err := c.search(ctx, term, "track", limit, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Tracks, nil
}

// SearchArtists runs an artist-category search.
func (c *Client) SearchArtists(ctx context.Context, term string, limit int) (*Page[Artist], error) {
	var envelope struct {
		Artists Page[Artist] `json:"artists"`
	}
	if err := c.search(ctx, term, "artist", limit, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Artists, nil
}

// SearchAlbums runs an album-category search.
func (c *Client) SearchAlbums(ctx context.Context, term string, limit int) (*Page[Album], error) {
	var envelope struct {
		Albums Page[Album] `json:"albums"`
	}
	if err := c.search(ctx, term, "album", limit, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Albums, nil
}

// SearchPlaylists runs a playlist-category search.
func (c *Client) SearchPlaylists(ctx context.Context, term string, limit int) (*Page[Playlist], error) {
	var envelope struct {
		Playlists Page[Playlist] `json:"playlists"`
	}
	if err := c.search(ctx, term, "playlist", limit, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Playlists, nil
}
