// Package ui owns the terminal: a synchronous frame loop that paints shared
// state under the lock, consumes one input or tick event per iteration, and
// talks to the dispatcher only by enqueueing commands.
package ui

import (
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mdheller/spotify-tui/internal/auth"
	"github.com/mdheller/spotify-tui/internal/dispatch"
	"github.com/mdheller/spotify-tui/internal/state"
	"github.com/mdheller/spotify-tui/internal/store"
)

// UI drives the render/input loop. It is the sole producer into the command
// queue and the sole consumer of terminal events.
type UI struct {
	screen   tcell.Screen
	store    *state.Store
	sessions *store.SessionStore
	queue    *dispatch.Queue
	creds    *auth.Manager
	logger   *slog.Logger

	tickRate     time.Duration
	pollInterval time.Duration

	// Poll scheduling is tracked here rather than in shared state so a failed
	// poll (which never updates LastPlaybackPoll) cannot flood the queue.
	lastPollEnqueue time.Time

	input       []rune // search input buffer
	inputActive bool
	filter      []rune // playlist filter buffer
	filtering   bool
}

// New initializes the terminal screen and the loop around it.
func New(st *state.Store, sessions *store.SessionStore, queue *dispatch.Queue, creds *auth.Manager, tickRate, pollInterval time.Duration, logger *slog.Logger) (*UI, error) {
	if logger == nil {
		logger = slog.Default()
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return &UI{
		screen:       screen,
		store:        st,
		sessions:     sessions,
		queue:        queue,
		creds:        creds,
		logger:       logger,
		tickRate:     tickRate,
		pollInterval: pollInterval,
	}, nil
}

// Run executes the frame loop until the user quits or backs out of the root
// screen. It always restores the terminal before returning.
func (u *UI) Run() error {
	defer u.screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	u.bootstrap()

	ticker := time.NewTicker(u.tickRate)
	defer ticker.Stop()

	running := true
	for running {
		u.frame()
		select {
		case <-ticker.C:
			u.onTick(time.Now())
		case ev, ok := <-events:
			if !ok {
				running = false
				break
			}
			switch tev := ev.(type) {
			case *tcell.EventResize:
				u.screen.Sync()
			case *tcell.EventKey:
				running = u.handleKey(tev)
			}
		}
	}
	return nil
}

// bootstrap issues the first-render fetches. Deferring them past terminal
// init keeps startup snappy.
func (u *UI) bootstrap() {
	deviceID := state.Read(u.store, func(a *state.App) string { return a.DeviceID })

	u.queue.Enqueue(dispatch.FetchPlaylists{})
	u.queue.Enqueue(dispatch.FetchPlayback{})
	if deviceID == "" {
		// No cached device: send the user to the device-selection screen.
		u.queue.Enqueue(dispatch.FetchDevices{})
	}
}

// frame recomputes layout limits from the current terminal size and paints,
// all inside one lock acquisition. No network calls happen while the lock is
// held.
func (u *UI) frame() {
	width, height := u.screen.Size()
	u.screen.Clear()
	u.store.WithLock(func(a *state.App) {
		a.PageSize, a.SmallPageSize = pageLimits(height)
		u.draw(a, width, height)
	})
	u.screen.Show()
}

// pageLimits derives fetch page sizes from the terminal height so a fetched
// page fills the visible table without overflowing it.
func pageLimits(height int) (large, small int) {
	potential := height - 13
	if potential < 0 {
		potential = 0
	}
	maxLimit := potential
	if maxLimit > 50 {
		maxLimit = 50
	}

	large = int(float64(height) / 1.4)
	if large > maxLimit {
		large = maxLimit
	}
	small = int(float64(height) / 2.85)
	if small > maxLimit/2 {
		small = maxLimit / 2
	}

	if large < 1 {
		large = 1
	}
	if small < 1 {
		small = 1
	}
	return large, small
}

// onTick runs the scheduled checks that piggyback on the render tick: a
// credential refresh once the expiry passes, and a playback poll once the
// poll interval elapses.
func (u *UI) onTick(now time.Time) {
	if !u.creds.Valid(now) {
		u.queue.Enqueue(dispatch.RefreshAuth{})
	}
	if now.Sub(u.lastPollEnqueue) >= u.pollInterval {
		u.lastPollEnqueue = now
		u.queue.Enqueue(dispatch.FetchPlayback{})
	}
}
