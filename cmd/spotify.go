package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/shared"
)

// SpotifyLink runs the linking flow: open the authorization page, then serve the callback route on the
// loopback listener until the provider redirects back.
func (r *Runner) SpotifyLink(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if !r.tokens.HasSession() {
		return fmt.Errorf("%w: log in before linking Spotify", shared.ErrNotAuthenticated)
	}

	r.logger.Info("starting spotify linking", "redirect_uri", r.config.Server.CallbackURL())

	authURL, err := r.flow.Begin(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Opening the Spotify authorization page...\n")
	r.writePlain("If your browser did not open, visit:\n  %s\n\n", authURL)

	res := r.flow.Listen(ctx, r.config.Server.CallbackAddr(), cmd.Duration("timeout"))
	if res.Err != nil {
		return res.Err
	}

	r.writePlainln("✓ Spotify account linked")
	return r.writePlain("Run 'wrapped wrapped generate --term short' to create your first Wrapped\n")
}

// SpotifyCallback completes linking from a redirect URL pasted by the user.
func (r *Runner) SpotifyCallback(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	raw := cmd.StringArg("url")
	if raw == "" {
		return fmt.Errorf("%w: callback url", shared.ErrMissingArgument)
	}

	res := r.flow.HandleCallbackURL(ctx, raw)
	if res.Err != nil {
		return res.Err
	}
	return r.writePlain("✓ Spotify account linked\n")
}

// SpotifyStatus asks the backend whether the account has a linked Spotify account.
func (r *Runner) SpotifyStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	linked, err := r.backend.LinkCheck(ctx)
	if err != nil {
		return err
	}

	if linked {
		return r.writePlain("Spotify: ✓ Linked\n")
	}
	r.writePlain("Spotify: ✗ Not linked\n")
	return r.writePlain("Run 'wrapped spotify link' to connect your account\n")
}
