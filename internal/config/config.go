package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/suykerbuyk/devflow/internal/conversation"
)

// Config holds all devflow configuration.
type Config struct {
	Provider ProviderConfig        `toml:"provider"`
	Identity conversation.Identity `toml:"identity"`
	History  HistoryConfig         `toml:"history"`
	Archive  ArchiveConfig         `toml:"archive"`
	Server   ServerConfig          `toml:"server"`
	Log      LogConfig             `toml:"log"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

type ProviderConfig struct {
	Name           string `toml:"name"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	APIKeyEnv      string `toml:"api_key_env"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	SiteURL        string `toml:"site_url"`
	SiteName       string `toml:"site_name"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type ArchiveConfig struct {
	Dir      string `toml:"dir"`
	Compress bool   `toml:"compress"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Name:           "openrouter",
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "google/gemini-2.0-flash-lite-preview-02-05:free",
			APIKeyEnv:      "OPENROUTER_API_KEY",
			MaxTokens:      10000,
			TimeoutSeconds: 120,
			SiteName:       "DevFlow",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.local/share/devflow/history.db",
		},
		Archive: ArchiveConfig{
			Dir:      "~/.local/share/devflow/archive",
			Compress: true,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	cfg := DefaultConfig()
	cfg.expand()
	return cfg, nil
}

// LoadFile reads config from path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.expand()
	return cfg, nil
}

// expand resolves ~ in paths.
func (c *Config) expand() {
	c.History.Path = expandHome(c.History.Path)
	c.Archive.Dir = expandHome(c.Archive.Dir)
	c.Log.Path = expandHome(c.Log.Path)
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "devflow", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "devflow", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Timeout returns the provider request timeout.
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// APIKey returns the provider API key from the configured environment variable.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}
