package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the devflow config directory path.
// Uses $XDG_CONFIG_HOME/devflow if set, otherwise ~/.config/devflow.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devflow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "devflow")
}

// WriteDefault writes a default config.toml with the given identity.
// Returns the config file path. Skips if config.toml already exists.
func WriteDefault(email, displayName string) (string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, nil // already exists
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	content := fmt.Sprintf(`[provider]
name = "openrouter"
base_url = "https://openrouter.ai/api/v1"
model = "google/gemini-2.0-flash-lite-preview-02-05:free"
api_key_env = "OPENROUTER_API_KEY"
max_tokens = 10000
timeout_seconds = 120
site_name = "DevFlow"

[identity]
email = %q
display_name = %q

[history]
enabled = true
path = "~/.local/share/devflow/history.db"

[archive]
dir = "~/.local/share/devflow/archive"
compress = true

[server]
addr = ":8080"

[log]
level = "warn"
`, email, displayName)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}

// CompressHome replaces $HOME prefix with ~/ for display.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
