// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/formatter"
	"github.com/desertthunder/wrapped/internal/linking"
)

// setupCommand handles first-run configuration and local storage setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize local storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your Wrapped session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and store the token pair locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("WRAPPED_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("WRAPPED_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored tokens",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the stored session and its token claims",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Verify the session against the backend profile",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// accountCommand handles account lifecycle operations
func accountCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage your Wrapped account",
		Commands: []*cli.Command{
			{
				Name:  "delete",
				Usage: "Delete your account and log out",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the deletion",
					},
				},
				Action: r.AccountDelete,
			},
		},
	}
}

// spotifyCommand handles Spotify account linking
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Link your Spotify account",
		Commands: []*cli.Command{
			{
				Name:  "link",
				Usage: "Open the Spotify authorization page and wait for the redirect",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the redirect",
						Value: linking.DefaultTimeout,
					},
				},
				Action: r.SpotifyLink,
			},
			{
				Name:  "callback",
				Usage: "Complete linking from a pasted redirect URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.SpotifyCallback,
			},
			{
				Name:   "status",
				Usage:  "Check whether your Spotify account is linked",
				Action: r.SpotifyStatus,
			},
		},
	}
}

// homeCommand renders the home dashboard
func homeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "home",
		Usage: "Show your profile and Wrapped history",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Home,
	}
}

// wrappedCommand handles snapshot operations
func wrappedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wrapped",
		Aliases: []string{"w"},
		Usage:   "Generate and manage Wrapped snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your Wrapped history",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WrappedList,
			},
			{
				Name:  "generate",
				Usage: "Generate Wrapped snapshots for one or more terms",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "term",
						Aliases: []string{"t"},
						Usage:   "Term to generate (short, medium, long, christmas, halloween)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Generate every term",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests when generating several terms",
						Value: 3,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second when generating several terms",
						Value: 2,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WrappedGenerate,
			},
			{
				Name:  "show",
				Usage: "Show one snapshot artist by artist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the top artist's song preview in the browser",
					},
				},
				Action: r.WrappedShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.WrappedDelete,
			},
			{
				Name:  "publish",
				Usage: "Make a snapshot public",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.WrappedPublish,
			},
			{
				Name:  "public",
				Usage: "List snapshots other users have published",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WrappedPublic,
			},
		},
	}
}

// exportCommand handles writing snapshots to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export Wrapped snapshots to files",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Snapshot ID to export (repeatable; default: all)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (csv, markdown, text, json)",
				Value:   string(formatter.FormatJSON),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: wrapped_export_{epoch})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent export workers",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  "covers",
				Usage: "Download cover images for Markdown exports",
				Value: true,
			},
		},
		Action: r.Export,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "List previously written exports",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "snapshot",
						Usage: "Only show exports of this snapshot",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ExportHistory,
			},
		},
	}
}

// gameCommand runs a trivia round in the terminal
func gameCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "game",
		Aliases: []string{"trivia"},
		Usage:   "Play trivia about your latest Wrapped",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "time-limit",
				Usage: "Time allowed per question",
				Value: triviaTimeLimit,
			},
		},
		Action: r.Game,
	}
}

// themeCommand handles the stored theme preference
func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or change the TUI theme",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current theme",
				Action: r.ThemeShow,
			},
			{
				Name:   "toggle",
				Usage:  "Switch between dark and light",
				Action: r.ThemeToggle,
			},
			{
				Name:  "set",
				Usage: "Set the theme",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "theme"},
				},
				Action: r.ThemeSet,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the Wrapped backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Send the request without credentials",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Send the request without credentials",
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "Direct DELETE",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive Wrapped TUI",
		Action:  r.TUI,
	}
}
