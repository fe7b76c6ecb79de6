package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/shared"
)

// Setup creates the config file when missing and initializes the local storage database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.writePlain("✓ Created %s\n", configPath)
		}
		config = shared.DefaultConfig()
	}
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return err
	}

	r.logger.Info("initializing local storage", "path", config.Storage.Path)

	db, err := shared.OpenStorage(config.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer db.Close()

	version, _, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.writePlain("✓ Local storage ready at %s (schema version %d)\n", config.Storage.Path, version)
	r.writePlain("Backend: %s\n", config.API.BaseURL)
	r.writePlain("Spotify redirect URI: %s\n", config.Server.CallbackURL())
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'wrapped auth register' or 'wrapped auth login'\n")
	r.writePlain("2. Run 'wrapped spotify link' to connect Spotify\n")
	r.writePlain("3. Run 'wrapped tui' to browse your Wrapped\n")
	return nil
}
