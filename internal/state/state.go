// Package state holds the single shared aggregate visible to both the render
// loop and the dispatcher. Every field is guarded by one lock; WithLock is the
// only access path, so no mutation site can exist outside it.
package state

import (
	"sync"
	"time"

	"github.com/mdheller/spotify-tui/internal/spotify"
)

// NoSelection marks an empty collection's cursor.
const NoSelection = -1

// TrackTableContext records which fetch populated the track table, so the UI
// knows how to page and label it.
type TrackTableContext int

const (
	ContextNone TrackTableContext = iota
	ContextMyPlaylists
	ContextSavedTracks
	ContextSearchResults
	ContextMadeForYou
)

// TrackTable is the currently displayed track listing.
type TrackTable struct {
	Tracks   []spotify.Track
	Context  TrackTableContext
	Selected int
}

// SearchResults holds the four category collections from the last search.
// They are replaced together or not at all.
type SearchResults struct {
	Tracks    *spotify.Page[spotify.Track]
	Artists   *spotify.Page[spotify.Artist]
	Albums    *spotify.Page[spotify.Album]
	Playlists *spotify.Page[spotify.Playlist]
}

// SavedLibrary accumulates saved-track pages as the user scrolls.
type SavedLibrary struct {
	Pages []spotify.Page[spotify.SavedTrack]
}

// AddPage appends a fetched page, replacing a page already held for the same
// offset (re-query of a visited page).
func (l *SavedLibrary) AddPage(page spotify.Page[spotify.SavedTrack]) {
	for i := range l.Pages {
		if l.Pages[i].Offset == page.Offset {
			l.Pages[i] = page
			return
		}
	}
	l.Pages = append(l.Pages, page)
}

// App is the shared application state aggregate. Reads and writes require the
// store lock without exception.
type App struct {
	Nav Stack

	User      *spotify.User
	Playlists *spotify.Page[spotify.Playlist]
	Devices   []spotify.Device

	SelectedPlaylist int
	SelectedDevice   int

	TrackTable    TrackTable
	SearchResults SearchResults
	Saved         SavedLibrary
	LikedTrackIDs map[string]struct{}

	Playback         *spotify.PlaybackContext
	LastPlaybackPoll time.Time

	Err error

	// Layout-derived limits, recomputed from terminal dimensions each frame.
	PageSize      int
	SmallPageSize int

	DeviceID string
}

// Store wraps App behind one exclusive lock.
type Store struct {
	mu  sync.Mutex
	app App
}

// NewStore creates the shared state with a rooted navigation stack and empty
// cursors.
func NewStore() *Store {
	return &Store{
		app: App{
			Nav:              NewStack(),
			SelectedPlaylist: NoSelection,
			SelectedDevice:   NoSelection,
			TrackTable:       TrackTable{Selected: NoSelection},
			LikedTrackIDs:    make(map[string]struct{}),
			PageSize:         20,
			SmallPageSize:    4,
		},
	}
}

// WithLock runs fn with exclusive access to the shared state. fn must not
// block on I/O; network calls happen outside the lock.
func (s *Store) WithLock(fn func(*App)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.app)
}

// Read evaluates fn under the lock and returns its result. For callers that
// want a value out rather than a mutation in.
func Read[T any](s *Store, fn func(*App) T) T {
	var out T
	s.WithLock(func(a *App) {
		out = fn(a)
	})
	return out
}

// FirstIndex returns the cursor for a freshly replaced collection: the first
// element, or NoSelection when the collection is empty.
func FirstIndex(n int) int {
	if n == 0 {
		return NoSelection
	}
	return 0
}

// ClampIndex keeps a cursor inside [0, n), or NoSelection when n is zero.
func ClampIndex(i, n int) int {
	if n == 0 {
		return NoSelection
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// SetError records a failed operation for the error screen. It never touches
// the navigation stack.
func (a *App) SetError(err error) {
	a.Err = err
}

// ClearError dismisses the error screen. User-triggered only.
func (a *App) ClearError() {
	a.Err = nil
}

// MergeLiked folds a membership-check result into the liked-track set. flags
// is parallel to ids; a false removes a stale membership.
func (a *App) MergeLiked(ids []string, flags []bool) {
	for i, id := range ids {
		if i >= len(flags) {
			return
		}
		if flags[i] {
			a.LikedTrackIDs[id] = struct{}{}
		} else {
			delete(a.LikedTrackIDs, id)
		}
	}
}

// IsLiked reports saved-library membership for a track.
func (a *App) IsLiked(trackID string) bool {
	_, ok := a.LikedTrackIDs[trackID]
	return ok
}
