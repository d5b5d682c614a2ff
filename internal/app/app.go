// Package app contains the core application logic. It wires configuration,
// logging and the runner together, decoupled from the CLI entrypoint.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mfeller/skybatch/internal/config"
	"github.com/mfeller/skybatch/internal/ctxlog"
	"github.com/mfeller/skybatch/internal/platform"
	"github.com/mfeller/skybatch/internal/runner"
)

// Config holds everything the CLI layer hands over for one run.
type Config struct {
	// System is the positional system name, resolved against the
	// platform table at startup.
	System string

	// RomRoot overrides the configured ROM root; the system's
	// subdirectory is appended. RomPath is used verbatim instead.
	// At most one of the two may be set.
	RomRoot string
	RomPath string

	LocalOnly  bool
	OnlineOnly bool
	Debug      bool
	DryRun     bool
	Videos     bool

	// Workers overrides the configured concurrency ceiling when > 0.
	Workers int

	// ConfigPath names an optional HCL override file.
	ConfigPath string

	LogFormat string
	LogLevel  string
}

// NewConfig validates the CLI-level configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.System == "" {
		return nil, errors.New("a system name is required")
	}
	if cfg.RomRoot != "" && cfg.RomPath != "" {
		return nil, errors.New("-s and -p are mutually exclusive")
	}
	if cfg.LocalOnly && cfg.OnlineOnly {
		return nil, errors.New("--local-only and --online-only are mutually exclusive")
	}
	return &cfg, nil
}

// UsageError marks startup failures that are the user's input rather than
// the environment, so the entrypoint can exit with the usage convention.
type UsageError struct {
	Message string
}

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string {
	return e.Message
}

// App encapsulates one configured run.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *config.Config
	sys     platform.System
	romPath string
	opts    runner.Options
}

// NewApp builds a fully initialized App: logger, run configuration, system
// resolution and ROM path. Everything here happens before any phase runs,
// so a bad system name or config file stops the run with nothing dispatched.
func NewApp(outW io.Writer, appConfig *Config) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfg, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Workers > 0 {
		cfg.Workers = appConfig.Workers
	}
	logger.Debug("Configuration assembled.", "workers", cfg.Workers, "sources", len(cfg.Sources))

	table := cfg.Table()
	sys, ok := table.Lookup(appConfig.System)
	if !ok {
		return nil, &UsageError{Message: fmt.Sprintf(
			"unknown system %q, supported: %s",
			appConfig.System, strings.Join(table.Names(), ", "))}
	}

	romPath := filepath.Join(cfg.RomRoot, sys.Subdir)
	if appConfig.RomRoot != "" {
		romPath = filepath.Join(appConfig.RomRoot, sys.Subdir)
	}
	if appConfig.RomPath != "" {
		romPath = appConfig.RomPath
	}
	logger.Debug("ROM path resolved.", "path", romPath)

	return &App{
		outW:    outW,
		logger:  logger,
		cfg:     cfg,
		sys:     sys,
		romPath: romPath,
		opts: runner.Options{
			Debug:      appConfig.Debug,
			DryRun:     appConfig.DryRun,
			Videos:     appConfig.Videos,
			LocalOnly:  appConfig.LocalOnly,
			OnlineOnly: appConfig.OnlineOnly,
		},
	}, nil
}
