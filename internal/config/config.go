// Package config handles local settings for the neurochat client.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/neuroai/neurochat/internal/models"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "NEUROCHAT_"

// Duration is a time.Duration stored as a Go duration string ("5s", "50ms")
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
}

// Config represents the user configuration
type Config struct {
	// BaseURL is the backend address, e.g. http://127.0.0.1:5000
	BaseURL string `json:"base_url" env:"BASE_URL"`
	// PollInterval is how often the status indicator pings the backend.
	PollInterval Duration `json:"poll_interval" env:"POLL_INTERVAL"`
	// RevealDelay is the pause between two revealed characters.
	RevealDelay Duration `json:"reveal_delay" env:"REVEAL_DELAY"`
	// Timeout bounds each backend request. Zero means no client-side timeout.
	Timeout Duration `json:"timeout" env:"TIMEOUT"`
	// Sound rings the terminal bell while replies are revealed.
	Sound           bool           `json:"sound" env:"SOUND"`
	CopyToClipboard bool           `json:"copy_to_clipboard" env:"COPY_TO_CLIPBOARD"`
	TUITheme        string         `json:"tui_theme,omitempty" env:"TUI_THEME"`
	LogFile         string         `json:"log_file,omitempty" env:"LOG_FILE"`
	LogLevel        string         `json:"log_level,omitempty" env:"LOG_LEVEL"`
	Markdown        MarkdownConfig `json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		BaseURL:         models.DefaultBaseURL,
		PollInterval:    Duration(5 * time.Second),
		RevealDelay:     Duration(50 * time.Millisecond),
		Timeout:         0,
		Sound:           true,
		CopyToClipboard: false,
		TUITheme:        "neuro",
		LogFile:         filepath.Join(homeDir, ".neurochat", "neurochat.log"),
		LogLevel:        "info",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Validate checks values that would break the client at runtime
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url %q: missing host", c.BaseURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.RevealDelay <= 0 {
		return fmt.Errorf("reveal_delay must be positive")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".neurochat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk, then applies .env and
// NEUROCHAT_* environment overrides.
func LoadConfig() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	environ := Environ()
	if dotenv, err := godotenv.Read(".env"); err == nil {
		for k, v := range dotenv {
			if _, set := environ[k]; !set {
				environ[k] = v
			}
		}
	}

	return LoadConfigFrom(configPath, environ)
}

// LoadConfigFrom loads configuration from path and the given environment.
// A missing file yields defaults.
func LoadConfigFrom(path string, environ map[string]string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// Environ returns the process environment as a map
func Environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	return SaveConfigTo(filepath.Join(configDir, "config.json"), cfg)
}

// SaveConfigTo writes cfg to path with owner-only permissions
func SaveConfigTo(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// RevealSpeeds lists the reveal delays offered by the settings menu
func RevealSpeeds() []Duration {
	return []Duration{
		Duration(20 * time.Millisecond),
		Duration(50 * time.Millisecond),
		Duration(80 * time.Millisecond),
		Duration(120 * time.Millisecond),
	}
}
