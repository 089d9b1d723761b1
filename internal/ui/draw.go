package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/mdheller/spotify-tui/internal/state"
)

const playlistPaneWidth = 30

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorGreen)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleLiked    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// draw paints one frame from the shared state. Called with the state lock
// held; it writes cells only, never the network.
func (u *UI) draw(a *state.App, width, height int) {
	if a.Err != nil {
		u.drawError(a, width, height)
		return
	}

	u.drawPlayBar(a, width)

	switch a.Nav.Current().ID {
	case state.RouteSelectDevice:
		u.drawDevices(a, width, height)
	case state.RouteSearch:
		u.drawSearch(a, width, height)
	default:
		u.drawPlaylistPane(a, height)
		u.drawTrackTable(a, playlistPaneWidth+1, width, height)
	}

	u.drawStatusLine(a, width, height)
}

func (u *UI) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col-x >= maxWidth {
			return
		}
		u.screen.SetContent(col, y, r, nil, style)
		col++
	}
}

// drawPlayBar renders the two-line now-playing header.
func (u *UI) drawPlayBar(a *state.App, width int) {
	if a.Playback == nil || a.Playback.Item == nil {
		u.drawText(0, 0, width, styleDim, "Nothing playing")
		return
	}

	pb := a.Playback
	symbol := "▶"
	if !pb.IsPlaying {
		symbol = "⏸"
	}
	liked := " "
	if a.IsLiked(pb.Item.ID) {
		liked = "♥"
	}
	line := fmt.Sprintf("%s %s %s — %s", symbol, liked, pb.Item.Name, pb.Item.ArtistName())
	u.drawText(0, 0, width, styleTitle, line)

	progress := ""
	if pb.ProgressMS != nil {
		progress = fmt.Sprintf("%s / %s", formatDuration(*pb.ProgressMS), formatDuration(pb.Item.DurationMS))
	}
	detail := fmt.Sprintf("%s  [%s]  shuffle:%v repeat:%s", progress, pb.Device.Name, pb.ShuffleState, pb.RepeatState)
	u.drawText(0, 1, width, styleDim, detail)
}

func (u *UI) drawPlaylistPane(a *state.App, height int) {
	u.drawText(0, 3, playlistPaneWidth, styleTitle, "Playlists")

	if u.filtering || len(u.filter) > 0 {
		u.drawText(0, 4, playlistPaneWidth, styleDefault, "filter: "+string(u.filter))
	}

	if a.Playlists == nil {
		u.drawText(0, 5, playlistPaneWidth, styleDim, "loading...")
		return
	}

	visible := u.visiblePlaylists(a)
	row := 5
	for i, idx := range visible {
		if row >= height-1 {
			break
		}
		style := styleDefault
		if i == a.SelectedPlaylist {
			style = styleSelected
		}
		u.drawText(0, row, playlistPaneWidth, style, a.Playlists.Items[idx].Name)
		row++
	}
}

func (u *UI) drawTrackTable(a *state.App, left, width, height int) {
	title := "Tracks"
	switch a.TrackTable.Context {
	case state.ContextSavedTracks:
		title = "Liked Songs"
	case state.ContextSearchResults:
		title = "Search Results"
	case state.ContextMadeForYou:
		title = "Made For You"
	}
	u.drawText(left, 3, width-left, styleTitle, title)

	u.drawTrackRows(a, left, 5, width, height-1)
}

// drawTrackRows renders the shared track listing with the liked marker and
// the cursor highlight.
func (u *UI) drawTrackRows(a *state.App, left, top, width, bottom int) {
	row := top
	for i, track := range a.TrackTable.Tracks {
		if row >= bottom {
			break
		}
		style := styleDefault
		if i == a.TrackTable.Selected {
			style = styleSelected
		}
		marker := " "
		markerStyle := style
		if a.IsLiked(track.ID) {
			marker = "♥"
			if i != a.TrackTable.Selected {
				markerStyle = styleLiked
			}
		}
		u.drawText(left, row, 1, markerStyle, marker)
		line := fmt.Sprintf("%-40.40s  %-30.30s  %s", track.Name, track.ArtistName(), formatDuration(track.DurationMS))
		u.drawText(left+2, row, width-left-2, style, line)
		row++
	}
}

func (u *UI) drawDevices(a *state.App, width, height int) {
	u.drawText(0, 3, width, styleTitle, "Select a device")

	if len(a.Devices) == 0 {
		u.drawText(0, 5, width, styleDim, "No devices found. Open Spotify on a device and press d to rescan.")
		return
	}

	row := 5
	for i, device := range a.Devices {
		if row >= height-1 {
			break
		}
		style := styleDefault
		if i == a.SelectedDevice {
			style = styleSelected
		}
		active := ""
		if device.IsActive {
			active = " (active)"
		}
		u.drawText(0, row, width, style, fmt.Sprintf("%s [%s]%s", device.Name, device.Type, active))
		row++
	}
}

func (u *UI) drawSearch(a *state.App, width, height int) {
	prompt := "/ " + string(u.input)
	if u.inputActive {
		prompt += "▏"
	}
	u.drawText(0, 3, width, styleTitle, prompt)

	results := a.SearchResults
	if results.Tracks == nil {
		u.drawText(0, 5, width, styleDim, "Type a query and press enter")
		return
	}

	u.drawText(0, 5, width, styleTitle, fmt.Sprintf("Tracks (%d)", results.Tracks.Total))
	u.drawTrackRows(a, 0, 6, width/2, height-8)

	right := width/2 + 2
	row := 5
	u.drawText(right, row, width-right, styleTitle, fmt.Sprintf("Artists (%d)", results.Artists.Total))
	row++
	for _, artist := range results.Artists.Items {
		u.drawText(right, row, width-right, styleDefault, artist.Name)
		row++
	}
	row++
	u.drawText(right, row, width-right, styleTitle, fmt.Sprintf("Albums (%d)", results.Albums.Total))
	row++
	for _, album := range results.Albums.Items {
		u.drawText(right, row, width-right, styleDefault, album.Name)
		row++
	}
	row++
	u.drawText(right, row, width-right, styleTitle, fmt.Sprintf("Playlists (%d)", results.Playlists.Total))
	row++
	for _, playlist := range results.Playlists.Items {
		u.drawText(right, row, width-right, styleDefault, playlist.Name)
		row++
	}
}

func (u *UI) drawError(a *state.App, width, height int) {
	u.drawText(0, 1, width, styleError, "Error")
	u.drawText(0, 3, width, styleDefault, a.Err.Error())
	u.drawText(0, 5, width, styleDim, "Press any key to continue")
}

func (u *UI) drawStatusLine(a *state.App, width, height int) {
	user := ""
	if a.User != nil {
		name := a.User.DisplayName
		if name == "" {
			name = a.User.ID
		}
		user = name + "  "
	}
	hint := user + "q:back  /:search  d:devices  s:liked  f:filter  ctrl-c:quit"
	u.drawText(0, height-1, width, styleDim, hint)
}

func formatDuration(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
