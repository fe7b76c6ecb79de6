package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	err = ui.Run(ctx, ui.Deps{
		Controller:  r.controller,
		Collection:  r.collection,
		Engine:      r.engine,
		Preferences: r.prefs,
		History:     r.nav,
		OpenURL:     r.openURL,
		Logger:      shared.WithLogger(fileLogger, "component", "ui"),
	})
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// ThemeShow prints the stored theme.
func (r *Runner) ThemeShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	theme, err := r.prefs.Theme()
	if err != nil {
		return err
	}
	return r.writePlain("Theme: %s\n", theme)
}

// ThemeToggle switches between the dark and light themes.
func (r *Runner) ThemeToggle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	theme, err := r.prefs.ToggleTheme()
	if err != nil {
		return err
	}
	return r.writePlain("✓ Theme set to %s\n", theme)
}

// ThemeSet stores the given theme.
func (r *Runner) ThemeSet(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	theme, err := session.ParseTheme(cmd.StringArg("theme"))
	if err != nil {
		return err
	}
	if err := r.prefs.SetTheme(theme); err != nil {
		return err
	}
	return r.writePlain("✓ Theme set to %s\n", theme)
}
