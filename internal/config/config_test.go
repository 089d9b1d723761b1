package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Behavior.TickRateMS != 250 {
		t.Fatalf("TickRateMS = %d, want 250", cfg.Behavior.TickRateMS)
	}
	if cfg.Behavior.PlaybackPollMS != 5000 {
		t.Fatalf("PlaybackPollMS = %d, want 5000", cfg.Behavior.PlaybackPollMS)
	}
	if cfg.Client.RedirectPort != 8888 {
		t.Fatalf("RedirectPort = %d, want 8888", cfg.Client.RedirectPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if cfg.IsConfigured() {
		t.Fatal("default config reports configured without credentials")
	}
}

func TestValidateRejectsBadTickRate(t *testing.T) {
	for _, tick := range []int{0, -1, 1000, 5000} {
		cfg := DefaultConfig()
		cfg.Behavior.TickRateMS = tick
		if err := cfg.Validate(); err == nil {
			t.Fatalf("tick rate %d accepted, want rejection", tick)
		}
	}
	cfg := DefaultConfig()
	cfg.Behavior.TickRateMS = 999
	if err := cfg.Validate(); err != nil {
		t.Fatalf("tick rate 999 rejected: %v", err)
	}
}

func TestValidateRejectsBadPollInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Behavior.PlaybackPollMS = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero poll interval accepted, want rejection")
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := DefaultConfig()
		cfg.Client.RedirectPort = port
		if err := cfg.Validate(); err == nil {
			t.Fatalf("port %d accepted, want rejection", port)
		}
	}
}

func TestDurationsAndRedirectURI(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Behavior.TickRateMS = 100

	if got := cfg.TickRate(); got != 100*time.Millisecond {
		t.Fatalf("TickRate = %v, want 100ms", got)
	}
	if got := cfg.PlaybackPollInterval(); got != 5*time.Second {
		t.Fatalf("PlaybackPollInterval = %v, want 5s", got)
	}
	if got := cfg.RedirectURI(); got != "http://localhost:8888/callback" {
		t.Fatalf("RedirectURI = %q", got)
	}
}

func TestIsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Client.ID = "id"
	if cfg.IsConfigured() {
		t.Fatal("configured with only an ID")
	}
	cfg.Client.Secret = "secret"
	if !cfg.IsConfigured() {
		t.Fatal("not configured with both credentials")
	}
}
