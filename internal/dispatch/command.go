package dispatch

import (
	"github.com/mdheller/spotify-tui/internal/spotify"
	"github.com/mdheller/spotify-tui/internal/state"
)

// Command is a discrete unit of remote work requested by the render loop.
// The set is closed: every variant lives in this file and the dispatcher's
// type switch handles all of them. Commands are immutable once enqueued.
type Command interface {
	isCommand()
}

// FetchPlayback requests the current playback context, plus a saved-library
// membership check for the active track when there is one.
type FetchPlayback struct{}

// RefreshAuth requests a credential refresh via the token exchange.
type RefreshAuth struct{}

// FetchPlaylists requests the user's playlists and, after, the user profile.
type FetchPlaylists struct{}

// FetchDevices requests the playback device list and navigates to the
// device-selection screen regardless of how many devices come back.
type FetchDevices struct{}

// Search runs the four category queries concurrently; all must succeed or the
// whole command fails.
type Search struct {
	Query string
}

// FetchPlaylistTracks requests a page of a playlist's tracks.
type FetchPlaylistTracks struct {
	PlaylistID string
	Offset     int
}

// FetchMadeForYouTracks requests a page of a curated playlist's tracks.
type FetchMadeForYouTracks struct {
	PlaylistID string
	Offset     int
}

// FetchSavedTracks requests a page of the saved library. Navigate pushes the
// track-table screen on success.
type FetchSavedTracks struct {
	Offset   int
	Navigate bool
}

// SetTrackTable hands an already-fetched track list to the dispatcher for the
// membership check and table swap.
type SetTrackTable struct {
	Tracks  []spotify.Track
	Context state.TrackTableContext
}

func (FetchPlayback) isCommand()         {}
func (RefreshAuth) isCommand()           {}
func (FetchPlaylists) isCommand()        {}
func (FetchDevices) isCommand()          {}
func (Search) isCommand()                {}
func (FetchPlaylistTracks) isCommand()   {}
func (FetchMadeForYouTracks) isCommand() {}
func (FetchSavedTracks) isCommand()      {}
func (SetTrackTable) isCommand()         {}
