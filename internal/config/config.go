package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	explicit := v.ConfigFileUsed() != ""
	if !explicit {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "fitcoach"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fitcoach"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// A missing file is fine unless it was named explicitly.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); explicit || !notFound {
			return fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: FITCOACH_* (highest among these sources)
	v.SetEnvPrefix("fitcoach")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetString("data_dir") == "" {
		v.Set("data_dir", defaultDataDir())
	}
	return nil
}

// ResolveDBPath returns the sqlite DSN under data_dir, expanding a leading ~.
func ResolveDBPath(v *viper.Viper) string {
	dir := v.GetString("data_dir")
	if dir == "" {
		dir = defaultDataDir()
	}
	if len(dir) > 0 && dir[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return "sqlite://" + filepath.Join(dir, "fitcoach.db")
}

// CheckConfigValidity reports every invalid option in a single error.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []string
	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		errs = append(errs, "data_dir is required")
	}
	base := strings.TrimSpace(v.GetString("api.base_url"))
	if base == "" {
		errs = append(errs, "api.base_url is required")
	} else if u, err := url.Parse(base); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, "api.base_url must be an http(s) url")
	}
	if v.GetDuration("api.timeout") <= 0 {
		errs = append(errs, "api.timeout must be greater than 0")
	}
	if v.GetInt("recommend.limit") <= 0 {
		errs = append(errs, "recommend.limit must be greater than 0")
	}
	switch strings.ToLower(v.GetString("log.level")) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log.level must be one of debug|info|warn|error")
	}
	switch strings.ToLower(v.GetString("output")) {
	case "auto", "plain", "pretty", "json", "html":
	default:
		errs = append(errs, "output must be one of auto|plain|pretty|json|html")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
