package main

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// TokenClaims is the displayable part of an access token. Claims are read without verification.
type TokenClaims struct {
	Subject   string    `json:"subject,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	TokenType string    `json:"token_type,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Expired   bool      `json:"expired"`
}

// AuthStatusResult is the output of `auth status`.
type AuthStatusResult struct {
	LoggedIn      bool         `json:"logged_in"`
	HasRefresh    bool         `json:"has_refresh_token"`
	Claims        *TokenClaims `json:"claims,omitempty"`
	Username      string       `json:"username,omitempty"`
	SpotifyLinked *bool        `json:"spotify_linked,omitempty"`
}

// AuthLogin logs in and stores the returned token pair.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	username := cmd.String("username")
	r.logger.Info("logging in", "username", username)

	if err := r.controller.Login(ctx, username, cmd.String("password")); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.writePlain("✓ Logged in as %s\n", username)
}

// AuthRegister creates an account. It does not log in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	req := models.RegisterRequest{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}
	if err := r.controller.Register(ctx, req); err != nil {
		return err
	}

	r.writePlain("✓ Account created for %s\n", req.Username)
	return r.writePlain("Run 'wrapped auth login -u %s' to sign in\n", req.Username)
}

// AuthLogout clears the stored tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if err := r.controller.Logout(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the stored session. With --check it also fetches the profile.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	creds, err := r.tokens.Get()
	if err != nil {
		return fmt.Errorf("failed to read tokens: %w", err)
	}

	result := AuthStatusResult{LoggedIn: creds.Valid(), HasRefresh: creds.Valid() && creds.RefreshToken != ""}
	if result.LoggedIn {
		claims, err := inspectToken(creds.AccessToken)
		if err != nil {
			r.logger.Debug("access token is not a readable JWT", "error", err)
		}
		result.Claims = claims
	}

	if cmd.Bool("check") && result.LoggedIn {
		profile, err := r.controller.EnterHome(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrSessionInvalid, err)
		}
		result.Username = profile.Username
		result.SpotifyLinked = &profile.SpotifyLinked
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if !result.LoggedIn {
		r.writePlain("✗ Not logged in\n")
		return r.writePlain("Run 'wrapped auth login' to sign in\n")
	}

	r.writePlain("✓ Logged in\n")
	if result.Claims != nil {
		if result.Claims.UserID != "" {
			r.writePlain("User ID: %s\n", result.Claims.UserID)
		}
		if !result.Claims.ExpiresAt.IsZero() {
			state := "valid"
			if result.Claims.Expired {
				state = "expired"
			}
			r.writePlain("Access token: %s until %s\n", state, result.Claims.ExpiresAt.Format(time.RFC3339))
		}
	}
	if result.Username != "" {
		r.writePlain("Username: %s\n", result.Username)
		if *result.SpotifyLinked {
			r.writePlain("Spotify: ✓ Linked\n")
		} else {
			r.writePlain("Spotify: ✗ Not linked\n")
		}
	}
	return nil
}

// AccountDelete deletes the account on the backend and clears the session.
func (r *Runner) AccountDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete your account", shared.ErrMissingArgument)
	}

	if err := r.controller.DeleteAccount(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Account deleted\n")
}

// inspectToken reads the claims of a JWT access token without verifying it.
func inspectToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	switch v := claims["user_id"].(type) {
	case string:
		out.UserID = v
	case float64:
		out.UserID = fmt.Sprintf("%.0f", v)
	}
	if t, ok := claims["token_type"].(string); ok {
		out.TokenType = t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
		out.Expired = time.Now().After(exp.Time)
	}
	return out, nil
}
