package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/mdheller/spotify-tui/internal/dispatch"
	"github.com/mdheller/spotify-tui/internal/state"
)

// handleKey reacts to exactly one key press. The return value is false when
// the application should exit.
func (u *UI) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return false
	}

	// A visible error screen swallows the next key press to dismiss itself.
	cleared := false
	u.store.WithLock(func(a *state.App) {
		if a.Err != nil {
			a.ClearError()
			cleared = true
		}
	})
	if cleared {
		return true
	}

	route := state.Read(u.store, func(a *state.App) state.Route { return a.Nav.Current() })

	if route.ID == state.RouteSearch && u.inputActive {
		return u.handleSearchInput(ev)
	}
	if u.filtering {
		return u.handleFilterInput(ev)
	}

	if ev.Key() == tcell.KeyEscape || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
		return u.goBack()
	}

	switch ev.Key() {
	case tcell.KeyDown:
		u.moveCursor(route, 1)
		return true
	case tcell.KeyUp:
		u.moveCursor(route, -1)
		return true
	case tcell.KeyEnter:
		u.activate(route)
		return true
	}

	if ev.Key() != tcell.KeyRune {
		return true
	}

	switch ev.Rune() {
	case 'j':
		u.moveCursor(route, 1)
	case 'k':
		u.moveCursor(route, -1)
	case '/':
		u.inputActive = true
		u.input = nil
		u.store.WithLock(func(a *state.App) {
			a.Nav.Push(state.Route{ID: state.RouteSearch, Active: state.BlockSearchInput})
		})
	case 'd':
		u.queue.Enqueue(dispatch.FetchDevices{})
	case 's':
		u.queue.Enqueue(dispatch.FetchSavedTracks{Offset: 0, Navigate: true})
	case 'n':
		u.nextSavedPage()
	case 'f':
		u.filtering = true
		u.filter = nil
	case 'r':
		u.queue.Enqueue(dispatch.FetchPlayback{})
	}
	return true
}

// goBack pops the navigation stack, skipping the transient search entry.
// Underflow means "exit application".
func (u *UI) goBack() bool {
	ok := true
	u.store.WithLock(func(a *state.App) {
		_, ok = a.Nav.Back()
	})
	return ok
}

// moveCursor shifts the cursor that backs the focused region, clamped to the
// collection it indexes.
func (u *UI) moveCursor(route state.Route, delta int) {
	u.store.WithLock(func(a *state.App) {
		switch route.Active {
		case state.BlockSelectDevice:
			a.SelectedDevice = state.ClampIndex(a.SelectedDevice+delta, len(a.Devices))
		case state.BlockTrackTable, state.BlockSearchInput, state.BlockSearchResults:
			a.TrackTable.Selected = state.ClampIndex(a.TrackTable.Selected+delta, len(a.TrackTable.Tracks))
		default:
			n := u.visiblePlaylistCount(a)
			a.SelectedPlaylist = state.ClampIndex(a.SelectedPlaylist+delta, n)
		}
	})
}

// activate performs the Enter action for the focused region.
func (u *UI) activate(route state.Route) {
	switch route.Active {
	case state.BlockSelectDevice:
		var deviceID string
		u.store.WithLock(func(a *state.App) {
			if a.SelectedDevice == state.NoSelection || a.SelectedDevice >= len(a.Devices) {
				return
			}
			deviceID = a.Devices[a.SelectedDevice].ID
			a.DeviceID = deviceID
			a.Nav.Back()
		})
		if deviceID != "" && u.sessions != nil {
			if err := u.sessions.SaveDeviceID(deviceID); err != nil {
				u.logger.Warn("failed to persist device choice", "error", err)
			}
		}

	case state.BlockTrackTable, state.BlockSearchResults:
		// Playback control is not wired; selection is inert for now.

	default:
		var playlistID string
		u.store.WithLock(func(a *state.App) {
			playlistID = u.selectedPlaylistID(a)
		})
		if playlistID != "" {
			u.queue.Enqueue(dispatch.FetchPlaylistTracks{PlaylistID: playlistID, Offset: 0})
		}
	}
}

// nextSavedPage pages forward through the saved library when the track table
// is showing it.
func (u *UI) nextSavedPage() {
	offset := -1
	u.store.WithLock(func(a *state.App) {
		if a.TrackTable.Context != state.ContextSavedTracks {
			return
		}
		offset = 0
		for _, page := range a.Saved.Pages {
			if end := page.Offset + len(page.Items); end > offset {
				offset = end
			}
		}
	})
	if offset >= 0 {
		u.queue.Enqueue(dispatch.FetchSavedTracks{Offset: offset, Navigate: false})
	}
}

// handleSearchInput edits the search query buffer. Enter submits; Escape
// abandons the input and focus moves to the results.
func (u *UI) handleSearchInput(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter:
		query := string(u.input)
		u.inputActive = false
		if query != "" {
			u.queue.Enqueue(dispatch.Search{Query: query})
		}
	case tcell.KeyEscape:
		u.inputActive = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(u.input) > 0 {
			u.input = u.input[:len(u.input)-1]
		}
	case tcell.KeyRune:
		u.input = append(u.input, ev.Rune())
	}
	return true
}

// handleFilterInput edits the playlist filter buffer. Escape clears the
// filter; Enter keeps it and leaves filter mode.
func (u *UI) handleFilterInput(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter:
		u.filtering = false
	case tcell.KeyEscape:
		u.filtering = false
		u.filter = nil
		u.store.WithLock(func(a *state.App) {
			if a.Playlists != nil {
				a.SelectedPlaylist = state.ClampIndex(a.SelectedPlaylist, len(a.Playlists.Items))
			}
		})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(u.filter) > 0 {
			u.filter = u.filter[:len(u.filter)-1]
		}
	case tcell.KeyRune:
		u.filter = append(u.filter, ev.Rune())
	}
	u.clampFilteredSelection()
	return true
}

// clampFilteredSelection re-clamps the playlist cursor after the filter
// narrows or widens the visible set.
func (u *UI) clampFilteredSelection() {
	u.store.WithLock(func(a *state.App) {
		a.SelectedPlaylist = state.ClampIndex(a.SelectedPlaylist, u.visiblePlaylistCount(a))
	})
}
