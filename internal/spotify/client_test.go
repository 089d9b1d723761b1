package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestClientEncodesQueriesAndAuthorizes(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotPlaylistsQuery url.Values
	var gotContainsQuery url.Values
	var gotSearchQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/me/playlists":
			gotPlaylistsQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode(Page[Playlist]{
				Items: []Playlist{{ID: "p1", Name: "Morning"}},
				Total: 1,
			})
		case "/me/tracks/contains":
			gotContainsQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode([]bool{true, false})
		case "/search":
			gotSearchQuery = r.URL.Query()
			_, _ = w.Write([]byte(`{"tracks":{"items":[{"id":"t1","name":"Song"}],"total":1}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "token-1", nil)
	ctx := testContext(t)

	page, err := c.CurrentUserPlaylists(ctx, 20, 40)
	if err != nil {
		t.Fatalf("CurrentUserPlaylists returned error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "p1" {
		t.Fatalf("playlists page = %#v, want one playlist p1", page)
	}
	if gotAuth != "Bearer token-1" {
		t.Fatalf("Authorization = %q, want Bearer token-1", gotAuth)
	}
	if gotPlaylistsQuery.Get("limit") != "20" || gotPlaylistsQuery.Get("offset") != "40" {
		t.Fatalf("playlists query = %v, want limit=20 offset=40", gotPlaylistsQuery)
	}

	flags, err := c.SavedTracksContains(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("SavedTracksContains returned error: %v", err)
	}
	if len(flags) != 2 || !flags[0] || flags[1] {
		t.Fatalf("flags = %v, want [true false]", flags)
	}
	if gotContainsQuery.Get("ids") != "a,b" {
		t.Fatalf("ids query = %q, want a,b", gotContainsQuery.Get("ids"))
	}

	tracks, err := c.SearchTracks(ctx, "song", 4)
	if err != nil {
		t.Fatalf("SearchTracks returned error: %v", err)
	}
	if len(tracks.Items) != 1 || tracks.Items[0].ID != "t1" {
		t.Fatalf("search tracks = %#v, want one track t1", tracks)
	}
	if gotSearchQuery.Get("q") != "song" || gotSearchQuery.Get("type") != "track" || gotSearchQuery.Get("limit") != "4" {
		t.Fatalf("search query = %v, want q=song type=track limit=4", gotSearchQuery)
	}
}

func TestClientEscapesPlaylistID(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(Page[PlaylistTrack]{})
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "tok", nil)
	if _, err := c.PlaylistTracks(testContext(t), "p/1", 10, 0); err != nil {
		t.Fatalf("PlaylistTracks returned error: %v", err)
	}
	if gotPath != "/playlists/p%2F1/tracks" {
		t.Fatalf("path = %q, want the ID escaped", gotPath)
	}
}

func TestClientNoPlaybackReturnsNil(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "tok", nil)
	playback, err := c.CurrentPlayback(testContext(t))
	if err != nil {
		t.Fatalf("CurrentPlayback returned error: %v", err)
	}
	if playback != nil {
		t.Fatalf("playback = %#v, want nil for 204", playback)
	}
}

func TestClientStatusErrors(t *testing.T) {
	t.Parallel()

	var status int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"status":403,"message":"insufficient scope"}}`))
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "tok", nil)
	ctx := testContext(t)

	status = http.StatusUnauthorized
	if _, err := c.CurrentUser(ctx); !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("401 error = %v, want ErrAuthFailed", err)
	}

	status = http.StatusTooManyRequests
	if _, err := c.CurrentUser(ctx); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("429 error = %v, want ErrRateLimited", err)
	}

	status = http.StatusForbidden
	_, err := c.CurrentUser(ctx)
	if err == nil {
		t.Fatal("403 returned nil error")
	}
	if got := err.Error(); got != "spotify api: insufficient scope (status 403)" {
		t.Fatalf("403 error = %q, want the envelope message", got)
	}
}

func TestClientUnreachableServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(server.URL, "tok", nil)
	if _, err := c.CurrentUser(testContext(t)); !errors.Is(err, ErrServerUnreachable) {
		t.Fatalf("error = %v, want ErrServerUnreachable", err)
	}
}

func TestClientSetAccessToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(User{ID: "me"})
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, "old", nil)
	c.SetAccessToken("new")

	if _, err := c.CurrentUser(testContext(t)); err != nil {
		t.Fatalf("CurrentUser returned error: %v", err)
	}
	if gotAuth != "Bearer new" {
		t.Fatalf("Authorization = %q, want Bearer new", gotAuth)
	}
}

func TestTrackArtistName(t *testing.T) {
	if got := (Track{}).ArtistName(); got != "" {
		t.Fatalf("ArtistName with no artists = %q, want empty", got)
	}
	track := Track{Artists: []Artist{{Name: "A"}, {Name: "B"}}}
	if got := track.ArtistName(); got != "A, B" {
		t.Fatalf("ArtistName = %q, want A, B", got)
	}
}
