package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/mdheller/spotify-tui/internal/auth"
	"github.com/mdheller/spotify-tui/internal/config"
	"github.com/mdheller/spotify-tui/internal/dispatch"
	"github.com/mdheller/spotify-tui/internal/log"
	"github.com/mdheller/spotify-tui/internal/spotify"
	"github.com/mdheller/spotify-tui/internal/state"
	"github.com/mdheller/spotify-tui/internal/store"
	"github.com/mdheller/spotify-tui/internal/ui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var tickRate, pollInterval int
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.IntVar(&tickRate, "tick-rate", 0, "render tick rate in milliseconds (must be below 1000)")
	flag.IntVar(&pollInterval, "poll-interval", 0, "playback poll interval in milliseconds")
	flag.Parse()

	if showVersion {
		fmt.Printf("spotify-tui %s\n", Version)
		return
	}

	if err := run(tickRate, pollInterval); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(tickRate, pollInterval int) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if tickRate != 0 {
		cfg.Behavior.TickRateMS = tickRate
	}
	if pollInterval != 0 {
		cfg.Behavior.PlaybackPollMS = pollInterval
	}
	if tickRate != 0 || pollInterval != 0 {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting spotify-tui", "version", Version)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	sessions, err := store.Open(config.CachePath())
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessions.Close()

	authClient := spotify.NewAuthClient("", cfg.Client.ID, cfg.Client.Secret, logger)

	cached, ok := sessions.GetToken()
	if !ok || cached.RefreshToken == "" {
		cached, err = authorize(cfg, authClient, sessions)
		if err != nil {
			return err
		}
	}

	creds := auth.NewManager(authClient, cached.RefreshToken, auth.Credential{
		AccessToken: cached.AccessToken,
		Expiry:      cached.Expiry,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !creds.Valid(time.Now()) {
		cred, err := creds.Refresh(ctx)
		if err != nil {
			// A revoked grant needs a fresh authorization.
			sessions.ClearToken()
			return fmt.Errorf("stored session expired, run again to re-authenticate: %w", err)
		}
		if err := sessions.SaveToken(&store.CachedToken{
			AccessToken:  cred.AccessToken,
			RefreshToken: creds.RefreshTokenValue(),
			Expiry:       cred.Expiry,
		}); err != nil {
			logger.Warn("failed to persist refreshed token", "error", err)
		}
	}

	client := spotify.NewClient("", creds.Current().AccessToken, logger)

	st := state.NewStore()
	if deviceID, ok := sessions.GetDeviceID(); ok {
		st.WithLock(func(a *state.App) {
			a.DeviceID = deviceID
		})
	}

	queue := dispatch.NewQueue()
	dispatcher := dispatch.New(queue, client, creds, st, sessions, logger)
	go dispatcher.Run(ctx)

	tui, err := ui.New(st, sessions, queue, creds, cfg.TickRate(), cfg.PlaybackPollInterval(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	err = tui.Run()

	cancel()
	queue.Close()
	logger.Info("shutting down")

	return err
}

// runSetupFlow prompts for Spotify application credentials on first run.
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to spotify-tui!")
	fmt.Println()
	fmt.Println("You need a Spotify developer application to use this client:")
	fmt.Println("  1. Visit https://developer.spotify.com/dashboard and create an app")
	fmt.Printf("  2. Add %s as a redirect URI\n", cfg.RedirectURI())
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var clientID string
	for {
		fmt.Print("Enter your client ID: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		clientID = strings.TrimSpace(input)
		if clientID != "" {
			break
		}
		fmt.Println("Client ID cannot be empty. Please try again.")
	}

	var clientSecret string
	for {
		fmt.Print("Enter your client secret: ")
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		clientSecret = strings.TrimSpace(string(secret))
		if clientSecret != "" {
			break
		}
		fmt.Println("Client secret cannot be empty. Please try again.")
	}

	cfg.Client.ID = clientID
	cfg.Client.Secret = clientSecret

	if err := config.SaveClientCredentials(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run spotify-tui again to start the application.")
	return nil
}

// authorize runs the code-grant flow in the terminal and caches the
// resulting token.
func authorize(cfg *config.Config, authClient *spotify.AuthClient, sessions *store.SessionStore) (*store.CachedToken, error) {
	redirectURI := cfg.RedirectURI()

	fmt.Println()
	fmt.Println("Open this URL in your browser and authorize the application:")
	fmt.Println()
	fmt.Println("  " + authClient.AuthorizeURL(redirectURI))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var code string
	for {
		fmt.Print("Paste the URL you were redirected to: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		code, err = codeFromRedirect(strings.TrimSpace(input))
		if err != nil {
			fmt.Printf("✗ %v. Please try again.\n", err)
			continue
		}
		break
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := authClient.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	cred := auth.CredentialFromToken(token, time.Now())
	cached := &store.CachedToken{
		AccessToken:  cred.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       cred.Expiry,
	}
	if err := sessions.SaveToken(cached); err != nil {
		return nil, fmt.Errorf("failed to cache token: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Authorized!")
	fmt.Println()

	return cached, nil
}

// codeFromRedirect extracts the authorization code from a pasted
// redirect URL, or accepts a bare code.
func codeFromRedirect(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("input cannot be empty")
	}
	if !strings.Contains(input, "://") {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if errParam := u.Query().Get("error"); errParam != "" {
		return "", fmt.Errorf("authorization denied: %s", errParam)
	}
	code := u.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("no code parameter in URL")
	}
	return code, nil
}
