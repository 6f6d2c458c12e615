package wire

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mithrel/fitcoach/internal/client"
	"github.com/mithrel/fitcoach/internal/config"
	"github.com/mithrel/fitcoach/internal/db"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg    *viper.Viper
	Log    *slog.Logger
	Client *client.Client
}

// BuildApp wires dependencies with the provided config. Diagnostics go to logOut.
func BuildApp(ctx context.Context, v *viper.Viper, logOut io.Writer) (*App, error) {
	if err := config.CheckConfigValidity(v); err != nil {
		return nil, err
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := NewLogger(logOut, v.GetString("log.level"))
	c, err := client.New(client.Config{
		BaseURL:      v.GetString("api.base_url"),
		CSRFToken:    v.GetString("api.csrf_token"),
		SessionToken: v.GetString("api.session_token"),
		Timeout:      v.GetDuration("api.timeout"),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	return &App{Cfg: v, Log: logger, Client: c}, nil
}

// OpenStore opens the server database under data_dir.
func (a *App) OpenStore(ctx context.Context) (*db.Store, io.Closer, error) {
	return db.Open(ctx, config.ResolveDBPath(a.Cfg))
}

// NewLogger builds a text slog logger; unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
