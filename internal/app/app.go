package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/five82/shutter/internal/config"
	"github.com/five82/shutter/internal/logging"
	"github.com/five82/shutter/internal/photoapi"
	"github.com/five82/shutter/internal/prefs"
	"github.com/five82/shutter/internal/ui"
)

// Options configure the shutter application.
type Options struct {
	ConfigPath string // empty uses default ~/.config/shutter/config.toml
	PrefsPath  string // empty uses default ~/.config/shutter/prefs.toml
	StartDir   string // file picker start directory; empty uses last_dir, then cwd
}

// Run boots the shutter TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	uiOpts, closer, err := prepare(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	logger := uiOpts.Logger
	logger.Info("shutter starting", "start_dir", uiOpts.StartDir, "theme", uiOpts.ThemeName)

	err = ui.Run(uiOpts)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Cancelled by a signal; not a failure.
		err = nil
	}
	if err != nil {
		logger.Error("ui exited with error", "error", err)
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info("shutter stopped")
	return nil
}

// prepare loads configuration and preferences, opens the log file, and
// builds the API client. The returned closer releases the log file.
func prepare(ctx context.Context, opts Options) (ui.Options, io.Closer, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return ui.Options{}, nil, fmt.Errorf("load config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return ui.Options{}, nil, fmt.Errorf("load prefs: %w", err)
	}

	logger, closer, err := logging.Open(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return ui.Options{}, nil, fmt.Errorf("open log: %w", err)
	}

	client, err := photoapi.NewClient(cfg.APIURL, cfg.APIKey, photoapi.WithLogger(logger))
	if err != nil {
		_ = closer.Close()
		return ui.Options{}, nil, fmt.Errorf("init photo api client: %w", err)
	}

	startDir := opts.StartDir
	if startDir == "" {
		startDir = userPrefs.LastDir
	}

	return ui.Options{
		Context:   ctx,
		Searcher:  client,
		Uploader:  client,
		Logger:    logger,
		Clock:     clockwork.NewRealClock(),
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		StartDir:  startDir,
	}, closer, nil
}
