package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/linking"
	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/tasks"
	"github.com/desertthunder/wrapped/internal/wrapped"
)

// ExportStore records written exports and lists them back. Satisfied by repositories.ExportRepository.
type ExportStore interface {
	tasks.ExportRecorder
	List(criteria map[string]any) ([]*models.ExportRecord, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	storage    session.Storage
	exports    ExportStore
	httpClient *http.Client
	openURL    func(string) error
	logger     *log.Logger
	output     io.Writer
	input      io.Reader

	tokens     *session.TokenStore
	prefs      *session.Preferences
	nav        *session.History
	backend    *services.Backend
	controller *session.Controller
	collection *wrapped.Collection
	engine     *tasks.WrappedEngine
	flow       *linking.Flow
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Storage    session.Storage // Token and preference storage; nil leaves session commands unavailable
	Exports    ExportStore
	HTTPClient *http.Client
	OpenURL    func(string) error
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		exports:    opts.Exports,
		httpClient: opts.HTTPClient,
		openURL:    opts.OpenURL,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
	r.wire()
	return r
}

// wire builds the session graph on top of the runner's storage and logger.
func (r *Runner) wire() {
	if r.storage == nil {
		return
	}

	r.tokens = session.NewTokenStore(r.storage)
	r.prefs = session.NewPreferences(r.storage)
	r.nav = session.NewHistory()
	r.nav.OnNavigate = func(route session.Route) {
		r.logger.Debug("navigate", "route", route)
	}

	gw := services.NewGateway(
		r.config.API.BaseURL,
		r.tokens,
		services.WithHTTPClient(r.httpClient),
		services.WithRateLimit(r.config.API.RateLimit),
		services.WithLogger(shared.WithLogger(r.logger, "component", "gateway")),
	)
	r.backend = services.NewBackend(gw)
	r.controller = session.NewController(r.tokens, r.backend, r.nav, shared.WithLogger(r.logger, "component", "session"))
	r.collection = wrapped.NewCollection(
		r.backend,
		r.controller,
		r.nav,
		wrapped.WithPlaceholder(r.config.UI.PlaceholderImage),
		wrapped.WithLogger(shared.WithLogger(r.logger, "component", "wrapped")),
	)
	r.engine = tasks.NewWrappedEngine(r.controller, r.collection, shared.WithLogger(r.logger, "component", "engine"))
	r.flow = linking.NewFlow(
		r.backend,
		r.tokens,
		r.nav,
		linking.WithBrowser(r.openURL),
		linking.WithLogger(shared.WithLogger(r.logger, "component", "linking")),
		linking.WithReady(func(addr string) {
			r.writePlain("Listening for the Spotify redirect on http://%s/callback\n", addr)
		}),
	)
}

// SetLogger replaces the runner's logger and rebuilds the components that log through it.
func (r *Runner) SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	r.logger = l
	r.wire()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, accountCommand, spotifyCommand, homeCommand, wrappedCommand,
		exportCommand, gameCommand, themeCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies global flags ahead of every command.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// requireSession reports an unwired runner.
func (r *Runner) requireSession() error {
	if r.controller == nil {
		return fmt.Errorf("%w: local storage not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// loadHome mounts the home screen. Progress and a history failure are printed when verbose is set.
func (r *Runner) loadHome(ctx context.Context, verbose bool) (*tasks.HomeResult, error) {
	if err := r.requireSession(); err != nil {
		return nil, err
	}

	var prog chan tasks.ProgressUpdate
	wait := func() {}
	if verbose {
		prog, wait = r.streamProgress()
	}

	result, err := r.engine.LoadHome(ctx, prog)
	wait()

	if err != nil {
		if session.IsSessionError(err) {
			return nil, fmt.Errorf("%w: %w", shared.ErrSessionInvalid, err)
		}
		return nil, err
	}
	if result.HistoryErr != nil {
		if verbose {
			r.writePlain("⚠ Could not load your Wrapped history: %v\n", result.HistoryErr)
		} else {
			r.logger.Warn("could not load wrapped history", "error", result.HistoryErr)
		}
	}
	return result, nil
}

// streamProgress prints every update sent on the returned channel. wait closes the channel and blocks until
// the printer has drained it.
func (r *Runner) streamProgress() (chan tasks.ProgressUpdate, func()) {
	prog := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("  [%s %d/%d] %s\n", update.Phase, update.Step, update.Total, update.Message)
		}
	}()
	return prog, func() {
		close(prog)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
