package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"hoursync/config"
	"hoursync/everhour"
	"hoursync/storage"
	"hoursync/toggl"
)

const userAgent = "hoursync/1.0"

// newRunLogger builds the stderr logger of one command run, tagged with a
// fresh run id.
func newRunLogger(w io.Writer, cfg *config.Config, override string) (*slog.Logger, string, error) {
	levelName := cfg.Log.Level
	if strings.TrimSpace(override) != "" {
		levelName = override
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(levelName))); err != nil {
		return nil, "", fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	runID := uuid.NewString()
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger.With(slog.String("run_id", runID)), runID, nil
}

// runContext is cancelled on SIGINT/SIGTERM and, when timeout > 0, after timeout.
func runContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func newTogglClient(cfg *config.Config) (*toggl.HTTPClient, error) {
	if strings.TrimSpace(cfg.Toggl.APIKey) == "" {
		return nil, fmt.Errorf("toggl api key is missing: set %s or %s", config.EnvTogglAPIKey, config.KeyTogglAPIKey)
	}
	return toggl.NewClient(toggl.ClientConfig{
		BaseURL:   cfg.Toggl.URL,
		APIKey:    cfg.Toggl.APIKey,
		UserAgent: userAgent,
		Timeout:   cfg.HTTP.Timeout,
	})
}

func newEverhourClient(cfg *config.Config) (*everhour.HTTPClient, error) {
	if strings.TrimSpace(cfg.Everhour.APIKey) == "" {
		return nil, fmt.Errorf("everhour api key is missing: set %s or %s", config.EnvEverhourAPIKey, config.KeyEverhourAPIKey)
	}
	return everhour.NewClient(everhour.ClientConfig{
		BaseURL:   cfg.Everhour.URL,
		APIKey:    cfg.Everhour.APIKey,
		UserAgent: userAgent,
		Timeout:   cfg.HTTP.Timeout,
	})
}

// openSource returns the snapshot store when dbPath is set, the Toggl API
// otherwise. The returned close function is never nil.
func openSource(cfg *config.Config, dbPath string) (toggl.Client, func(), error) {
	if strings.TrimSpace(dbPath) != "" {
		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	client, err := newTogglClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}
