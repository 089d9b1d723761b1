package ui

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mdheller/spotify-tui/internal/state"
)

// filterIndexes returns the indices of names fuzzy-matching query, best match
// first. An empty query matches everything in original order.
func filterIndexes(names []string, query string) []int {
	if query == "" {
		indexes := make([]int, len(names))
		for i := range names {
			indexes[i] = i
		}
		return indexes
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Distance < ranks[j].Distance
	})

	indexes := make([]int, 0, len(ranks))
	for _, r := range ranks {
		indexes = append(indexes, r.OriginalIndex)
	}
	return indexes
}

// visiblePlaylists maps the playlist pane's display rows to indices into the
// full playlist collection, honoring the active filter.
func (u *UI) visiblePlaylists(a *state.App) []int {
	if a.Playlists == nil {
		return nil
	}
	names := make([]string, len(a.Playlists.Items))
	for i, p := range a.Playlists.Items {
		names[i] = p.Name
	}
	return filterIndexes(names, string(u.filter))
}

func (u *UI) visiblePlaylistCount(a *state.App) int {
	return len(u.visiblePlaylists(a))
}

// selectedPlaylistID resolves the cursor through the filter to a playlist ID.
func (u *UI) selectedPlaylistID(a *state.App) string {
	visible := u.visiblePlaylists(a)
	if a.SelectedPlaylist == state.NoSelection || a.SelectedPlaylist >= len(visible) {
		return ""
	}
	return a.Playlists.Items[visible[a.SelectedPlaylist]].ID
}
