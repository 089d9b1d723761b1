// Package dispatch bridges the render loop and the remote API: commands go in
// one ordered queue, results come out as lock-guarded state writes. One worker
// consumes the queue; it never touches the terminal and never holds the state
// lock across a network wait.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mdheller/spotify-tui/internal/auth"
	"github.com/mdheller/spotify-tui/internal/spotify"
	"github.com/mdheller/spotify-tui/internal/state"
	"github.com/mdheller/spotify-tui/internal/store"
)

// RemoteClient is the remote capability the dispatcher drives. Implemented by
// *spotify.Client; tests substitute a fake.
type RemoteClient interface {
	CurrentUser(ctx context.Context) (*spotify.User, error)
	CurrentUserPlaylists(ctx context.Context, limit, offset int) (*spotify.Page[spotify.Playlist], error)
	Devices(ctx context.Context) ([]spotify.Device, error)
	CurrentPlayback(ctx context.Context) (*spotify.PlaybackContext, error)
	SavedTracksContains(ctx context.Context, ids []string) ([]bool, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*spotify.Page[spotify.PlaylistTrack], error)
	SavedTracks(ctx context.Context, limit, offset int) (*spotify.Page[spotify.SavedTrack], error)
	SearchTracks(ctx context.Context, term string, limit int) (*spotify.Page[spotify.Track], error)
	SearchArtists(ctx context.Context, term string, limit int) (*spotify.Page[spotify.Artist], error)
	SearchAlbums(ctx context.Context, term string, limit int) (*spotify.Page[spotify.Album], error)
	SearchPlaylists(ctx context.Context, term string, limit int) (*spotify.Page[spotify.Playlist], error)
	SetAccessToken(token string)
}

var _ RemoteClient = (*spotify.Client)(nil)

// Dispatcher is the single consumer of the command queue.
type Dispatcher struct {
	queue    *Queue
	client   RemoteClient
	creds    *auth.Manager
	state    *state.Store
	sessions *store.SessionStore // optional; persists refreshed tokens
	logger   *slog.Logger
}

// New wires a dispatcher. sessions may be nil when persistence is disabled.
func New(queue *Queue, client RemoteClient, creds *auth.Manager, st *state.Store, sessions *store.SessionStore, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		queue:    queue,
		client:   client,
		creds:    creds,
		state:    st,
		sessions: sessions,
		logger:   logger,
	}
}

// Run consumes commands until the queue closes or ctx is cancelled. Commands
// are processed strictly in enqueue order, one at a time.
func (d *Dispatcher) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		d.queue.Close()
	}()

	for {
		cmd, ok := d.queue.Dequeue()
		if !ok {
			d.logger.Info("dispatcher shutting down")
			return
		}
		d.handle(ctx, cmd)
	}
}

// handle maps each command variant to its handler. The switch is exhaustive
// over the closed command set.
func (d *Dispatcher) handle(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case FetchPlayback:
		d.fetchPlayback(ctx)
	case RefreshAuth:
		d.refreshAuth(ctx)
	case FetchPlaylists:
		d.fetchPlaylists(ctx)
	case FetchDevices:
		d.fetchDevices(ctx)
	case Search:
		d.search(ctx, c.Query)
	case FetchPlaylistTracks:
		d.fetchTrackPage(ctx, c.PlaylistID, c.Offset, state.ContextMyPlaylists)
	case FetchMadeForYouTracks:
		d.fetchTrackPage(ctx, c.PlaylistID, c.Offset, state.ContextMadeForYou)
	case FetchSavedTracks:
		d.fetchSavedTracks(ctx, c.Offset, c.Navigate)
	case SetTrackTable:
		d.setTrackTable(ctx, c.Tracks, c.Context)
	default:
		d.logger.Error("unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

// fail routes a remote-call error into the shared error field. No call site
// is permitted to drop an error silently.
func (d *Dispatcher) fail(op string, err error) {
	d.logger.Error("command failed", "op", op, "error", err)
	wrapped := fmt.Errorf("%s: %w", op, err)
	d.state.WithLock(func(a *state.App) {
		a.SetError(wrapped)
	})
}

// limits reads the layout-derived page limits under the lock.
func (d *Dispatcher) limits() (pageSize, smallPageSize int) {
	d.state.WithLock(func(a *state.App) {
		pageSize, smallPageSize = a.PageSize, a.SmallPageSize
	})
	return pageSize, smallPageSize
}

// checkSaved runs the bulk membership check for ids. A failure is recorded in
// the error field and reported by the false return; the caller then skips the
// merge but still applies its collection write.
func (d *Dispatcher) checkSaved(ctx context.Context, op string, ids []string) ([]bool, bool) {
	if len(ids) == 0 {
		return nil, false
	}
	flags, err := d.client.SavedTracksContains(ctx, ids)
	if err != nil {
		d.fail(op, err)
		return nil, false
	}
	return flags, true
}

func (d *Dispatcher) fetchPlayback(ctx context.Context) {
	playback, err := d.client.CurrentPlayback(ctx)
	if err != nil {
		d.fail("fetch playback", err)
		return
	}

	var ids []string
	var flags []bool
	merge := false
	if playback != nil && playback.Item != nil && playback.Item.ID != "" {
		ids = []string{playback.Item.ID}
		flags, merge = d.checkSaved(ctx, "fetch playback", ids)
	}

	now := time.Now()
	d.state.WithLock(func(a *state.App) {
		a.Playback = playback
		a.LastPlaybackPoll = now
		if merge {
			a.MergeLiked(ids, flags)
		}
	})
}

func (d *Dispatcher) fetchPlaylists(ctx context.Context) {
	pageSize, _ := d.limits()
	page, err := d.client.CurrentUserPlaylists(ctx, pageSize, 0)
	if err != nil {
		d.fail("fetch playlists", err)
	} else {
		d.state.WithLock(func(a *state.App) {
			a.Playlists = page
			a.SelectedPlaylist = state.FirstIndex(len(page.Items))
		})
	}

	user, err := d.client.CurrentUser(ctx)
	if err != nil {
		d.fail("fetch user profile", err)
		return
	}
	d.state.WithLock(func(a *state.App) {
		a.User = user
	})
}

func (d *Dispatcher) fetchDevices(ctx context.Context) {
	devices, err := d.client.Devices(ctx)
	if err != nil {
		d.fail("fetch devices", err)
		return
	}
	d.state.WithLock(func(a *state.App) {
		a.Devices = devices
		a.SelectedDevice = state.FirstIndex(len(devices))
		// The device-selection screen appears even when the account has no
		// active devices.
		a.Nav.Push(state.Route{ID: state.RouteSelectDevice, Active: state.BlockSelectDevice})
	})
}

// search fans the four category queries out concurrently and joins them
// fail-fast: one failed sub-query fails the whole command and none of the
// result collections change.
func (d *Dispatcher) search(ctx context.Context, query string) {
	_, smallPageSize := d.limits()

	var (
		tracks    *spotify.Page[spotify.Track]
		artists   *spotify.Page[spotify.Artist]
		albums    *spotify.Page[spotify.Album]
		playlists *spotify.Page[spotify.Playlist]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tracks, err = d.client.SearchTracks(gctx, query, smallPageSize)
		return err
	})
	g.Go(func() (err error) {
		artists, err = d.client.SearchArtists(gctx, query, smallPageSize)
		return err
	})
	g.Go(func() (err error) {
		albums, err = d.client.SearchAlbums(gctx, query, smallPageSize)
		return err
	})
	g.Go(func() (err error) {
		playlists, err = d.client.SearchPlaylists(gctx, query, smallPageSize)
		return err
	})
	if err := g.Wait(); err != nil {
		d.fail("search", err)
		return
	}

	ids := trackIDs(tracks.Items)
	flags, merge := d.checkSaved(ctx, "search", ids)

	d.state.WithLock(func(a *state.App) {
		a.TrackTable = state.TrackTable{
			Tracks:   tracks.Items,
			Context:  state.ContextSearchResults,
			Selected: state.FirstIndex(len(tracks.Items)),
		}
		a.SearchResults = state.SearchResults{
			Tracks:    tracks,
			Artists:   artists,
			Albums:    albums,
			Playlists: playlists,
		}
		if merge {
			a.MergeLiked(ids, flags)
		}
	})
}

func (d *Dispatcher) fetchTrackPage(ctx context.Context, playlistID string, offset int, tableCtx state.TrackTableContext) {
	op := "fetch playlist tracks"
	if tableCtx == state.ContextMadeForYou {
		op = "fetch made-for-you tracks"
	}

	pageSize, _ := d.limits()
	page, err := d.client.PlaylistTracks(ctx, playlistID, pageSize, offset)
	if err != nil {
		d.fail(op, err)
		return
	}

	tracks := make([]spotify.Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track != nil {
			tracks = append(tracks, *item.Track)
		}
	}

	ids := trackIDs(tracks)
	flags, merge := d.checkSaved(ctx, op, ids)

	d.state.WithLock(func(a *state.App) {
		a.TrackTable = state.TrackTable{
			Tracks:   tracks,
			Context:  tableCtx,
			Selected: state.FirstIndex(len(tracks)),
		}
		if merge {
			a.MergeLiked(ids, flags)
		}
		if a.Nav.Current().ID != state.RouteTrackTable {
			a.Nav.Push(state.Route{ID: state.RouteTrackTable, Active: state.BlockTrackTable})
		}
	})
}

func (d *Dispatcher) fetchSavedTracks(ctx context.Context, offset int, navigate bool) {
	pageSize, _ := d.limits()
	page, err := d.client.SavedTracks(ctx, pageSize, offset)
	if err != nil {
		d.fail("fetch saved tracks", err)
		return
	}

	tracks := make([]spotify.Track, 0, len(page.Items))
	for _, item := range page.Items {
		tracks = append(tracks, item.Track)
	}

	ids := trackIDs(tracks)
	flags, merge := d.checkSaved(ctx, "fetch saved tracks", ids)

	d.state.WithLock(func(a *state.App) {
		a.TrackTable = state.TrackTable{
			Tracks:   tracks,
			Context:  state.ContextSavedTracks,
			Selected: state.FirstIndex(len(tracks)),
		}
		a.Saved.AddPage(*page)
		if merge {
			a.MergeLiked(ids, flags)
		}
		if navigate && a.Nav.Current().ID != state.RouteTrackTable {
			a.Nav.Push(state.Route{ID: state.RouteTrackTable, Active: state.BlockTrackTable})
		}
	})
}

func (d *Dispatcher) setTrackTable(ctx context.Context, tracks []spotify.Track, tableCtx state.TrackTableContext) {
	ids := trackIDs(tracks)
	flags, merge := d.checkSaved(ctx, "set track table", ids)

	d.state.WithLock(func(a *state.App) {
		a.TrackTable.Tracks = tracks
		a.TrackTable.Selected = state.FirstIndex(len(tracks))
		if tableCtx != state.ContextNone {
			a.TrackTable.Context = tableCtx
		}
		if merge {
			a.MergeLiked(ids, flags)
		}
	})
}

func (d *Dispatcher) refreshAuth(ctx context.Context) {
	cred, err := d.creds.Refresh(ctx)
	if err != nil {
		// Non-fatal: the stale credential keeps serving until the next check.
		d.fail("refresh credential", err)
		return
	}

	d.client.SetAccessToken(cred.AccessToken)

	if d.sessions != nil {
		cached := &store.CachedToken{
			AccessToken:  cred.AccessToken,
			RefreshToken: d.creds.RefreshTokenValue(),
			Expiry:       cred.Expiry,
		}
		if err := d.sessions.SaveToken(cached); err != nil {
			d.logger.Warn("failed to persist refreshed token", "error", err)
		}
	}
}

func trackIDs(tracks []spotify.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
