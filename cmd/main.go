package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/repositories"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
)

// ConfigEnv names the environment variable pointing at the config file.
const ConfigEnv = "WRAPPED_CONFIG"

func main() {
	os.Exit(run())
}

func run() int {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv(ConfigEnv)
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		logger.Errorf("invalid configuration: %v", err)
		return 1
	}

	opts := RunnerOpts{Config: config, ConfigPath: configPath, Logger: logger}
	db, err := shared.OpenStorage(config.Storage)
	if err != nil {
		logger.Warn("local storage unavailable, session commands are disabled", "path", config.Storage.Path, "error", err)
	} else {
		defer db.Close()
		opts.Storage = repositories.NewStorageRepository(db)
		opts.Exports = repositories.NewExportRepository(db)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:    "wrapped",
		Usage:   "Your Spotify Wrapped, in the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   runner.before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			return 0
		case session.IsSessionError(err):
			logger.Error("session expired or missing, run 'wrapped auth login'", "error", err)
		case errors.Is(err, shared.ErrPreconditionNotMet):
			logger.Warn(err.Error())
		default:
			logger.Errorf("application error: %v", err)
		}
		return 1
	}
	return 0
}
