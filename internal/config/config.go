package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Client   ClientConfig   `mapstructure:"client"`
	Behavior BehaviorConfig `mapstructure:"behavior"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ClientConfig holds the Spotify application credentials
type ClientConfig struct {
	ID           string `mapstructure:"id"`
	Secret       string `mapstructure:"secret"`
	RedirectPort int    `mapstructure:"redirect_port"`
}

// BehaviorConfig holds render-loop and polling cadence settings
type BehaviorConfig struct {
	TickRateMS     int `mapstructure:"tick_rate_ms"`
	PlaybackPollMS int `mapstructure:"playback_poll_ms"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			RedirectPort: 8888,
		},
		Behavior: BehaviorConfig{
			TickRateMS:     250,
			PlaybackPollMS: 5000,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "spotify-tui", "spotify-tui.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "spotify-tui", "spotify-tui.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "spotify-tui")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "spotify-tui")
	}
}

// defaultCachePath returns the session cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "spotify-tui", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "spotify-tui", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("SPOTIFY_TUI")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the render loop cannot run with.
func (c *Config) Validate() error {
	if c.Behavior.TickRateMS <= 0 || c.Behavior.TickRateMS >= 1000 {
		return fmt.Errorf("tick rate must be between 1 and 999 milliseconds, got %d", c.Behavior.TickRateMS)
	}
	if c.Behavior.PlaybackPollMS <= 0 {
		return fmt.Errorf("playback poll interval must be positive, got %d", c.Behavior.PlaybackPollMS)
	}
	if c.Client.RedirectPort <= 0 || c.Client.RedirectPort > 65535 {
		return fmt.Errorf("redirect port out of range: %d", c.Client.RedirectPort)
	}
	return nil
}

// SaveClientCredentials writes the client ID/secret captured during setup.
func SaveClientCredentials(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("client.id", cfg.Client.ID)
	viper.Set("client.secret", cfg.Client.Secret)
	viper.Set("client.redirect_port", cfg.Client.RedirectPort)
	viper.Set("behavior.tick_rate_ms", cfg.Behavior.TickRateMS)
	viper.Set("behavior.playback_poll_ms", cfg.Behavior.PlaybackPollMS)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true when the Spotify application credentials are set
func (c *Config) IsConfigured() bool {
	return c.Client.ID != "" && c.Client.Secret != ""
}

// RedirectURI builds the loopback redirect used in the authorization grant
func (c *Config) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/callback", c.Client.RedirectPort)
}

// TickRate returns the render tick interval as a duration
func (c *Config) TickRate() time.Duration {
	return time.Duration(c.Behavior.TickRateMS) * time.Millisecond
}

// PlaybackPollInterval returns the playback poll cadence as a duration
func (c *Config) PlaybackPollInterval() time.Duration {
	return time.Duration(c.Behavior.PlaybackPollMS) * time.Millisecond
}

// CachePath returns the session cache directory
func CachePath() string {
	return defaultCachePath()
}
