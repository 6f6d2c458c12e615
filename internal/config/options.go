package config

import (
	"os"
	"path/filepath"
	"time"
)

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Core paths and conventions
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for server state; DB is data_dir/fitcoach.db"},
		{Key: "output", Default: "auto", Comment: "Default output mode: auto|plain|pretty|json"},
		{Key: "http_addr", Default: ":8080", Comment: "Listen address for `fitcoach-cli server`"},

		{Key: "api.base_url", Default: "http://localhost:8080", Comment: "Base URL of the fitcoach API"},
		{Key: "api.session_token", Default: "", Comment: "Bearer token identifying the user"},
		{Key: "api.csrf_token", Default: "", Comment: "CSRF token sent on POST/DELETE as header and cookie"},
		{Key: "api.timeout", Default: 10 * time.Second, Comment: "HTTP timeout for API calls"},

		{Key: "recommend.limit", Default: 3, Comment: "Maximum number of recommended exercises"},
		{Key: "guide.escape", Default: false, Comment: "HTML-escape beginner guide text before rendering"},
		{Key: "log.level", Default: "info", Comment: "Log level: debug|info|warn|error"},
	}
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/fitcoach or ~/.local/share/fitcoach
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fitcoach")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fitcoach")
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "fitcoach", "config.toml")
}
