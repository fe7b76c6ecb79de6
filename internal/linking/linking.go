// Package linking implements the two-phase Spotify account linking saga.
//
// Phase one fetches the provider authorization URL from the backend and sends the user there. Phase two
// receives the provider redirect (code or error), exchanges the code through the backend, and stores any
// token pair the backend returns.
package linking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/server"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
)

// DefaultTimeout bounds how long [Flow.Listen] waits for the provider redirect.
const DefaultTimeout = 2 * time.Minute

// Phase is the linking saga state.
type Phase int

const (
	Idle Phase = iota
	AwaitingProviderAuthorization
	ExchangingCode
	Linked
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingProviderAuthorization:
		return "awaiting authorization"
	case ExchangingCode:
		return "exchanging code"
	case Linked:
		return "linked"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Backend is the subset of the backend client used by the [Flow].
type Backend interface {
	AuthURL(ctx context.Context) (string, error)
	ExchangeCode(ctx context.Context, code string) (*models.Credentials, error)
}

// Result is the outcome of handling a callback.
type Result struct {
	Phase Phase
	Route session.Route
	Err   error
}

// Flow runs the linking saga. It is safe for concurrent use.
type Flow struct {
	mu       sync.Mutex
	phase    Phase
	lastCode string
	last     *Result

	backend Backend
	tokens  *session.TokenStore
	nav     session.Navigator
	open    func(string) error
	ready   func(addr string)
	logger  *log.Logger
}

// Option configures a [Flow].
type Option func(*Flow)

// WithBrowser replaces [shared.OpenBrowser].
func WithBrowser(open func(string) error) Option {
	return func(f *Flow) { f.open = open }
}

// WithReady registers a function called with the bound address once [Flow.Listen] is serving.
func WithReady(fn func(addr string)) Option {
	return func(f *Flow) { f.ready = fn }
}

// WithLogger sets the flow's logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Flow) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFlow creates a [Flow] in the [Idle] phase.
func NewFlow(backend Backend, tokens *session.TokenStore, nav session.Navigator, opts ...Option) *Flow {
	f := &Flow{
		backend: backend,
		tokens:  tokens,
		nav:     nav,
		open:    shared.OpenBrowser,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Phase returns the current phase.
func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) setPhase(p Phase) {
	f.mu.Lock()
	f.phase = p
	f.mu.Unlock()
}

// Begin fetches the authorization URL and opens it in the system browser.
//
// A browser that cannot be opened is not an error; the URL is returned for the caller to show.
func (f *Flow) Begin(ctx context.Context) (string, error) {
	authURL, err := f.backend.AuthURL(ctx)
	if err != nil {
		f.setPhase(Failed)
		return "", fmt.Errorf("%w: %w", shared.ErrLinkFailed, err)
	}

	f.mu.Lock()
	f.phase = AwaitingProviderAuthorization
	f.lastCode, f.last = "", nil
	f.mu.Unlock()

	if err := f.open(authURL); err != nil {
		f.logger.Warn("could not open browser", "error", err)
	}
	return authURL, nil
}

// HandleCallback completes the saga from the redirect's query parameters.
//
// A provider error, a missing code or a missing session fail without touching the token store. A code
// that was already exchanged successfully returns the earlier result without a second exchange.
func (f *Flow) HandleCallback(ctx context.Context, query url.Values) Result {
	if e := query.Get("error"); e != "" {
		return f.fail(fmt.Errorf("%w: provider returned %s", shared.ErrLinkFailed, e))
	}

	code := query.Get("code")
	if code == "" {
		return f.fail(fmt.Errorf("%w: callback carried no code", shared.ErrLinkFailed))
	}

	f.mu.Lock()
	if f.last != nil && f.lastCode == code && f.last.Err == nil {
		prev := *f.last
		f.mu.Unlock()
		return prev
	}
	if f.phase == ExchangingCode {
		f.mu.Unlock()
		return Result{Phase: ExchangingCode, Err: fmt.Errorf("%w: exchange already in progress", shared.ErrLinkFailed)}
	}
	f.mu.Unlock()

	if !f.tokens.HasSession() {
		return f.fail(fmt.Errorf("%w: %w", shared.ErrLinkFailed, shared.ErrNotAuthenticated))
	}

	f.setPhase(ExchangingCode)
	f.logger.Info("exchanging authorization code")

	creds, err := f.backend.ExchangeCode(ctx, code)
	if err != nil {
		return f.fail(fmt.Errorf("%w: %w", shared.ErrLinkFailed, err))
	}

	if creds != nil {
		if err := f.tokens.Set(*creds); err != nil {
			return f.fail(fmt.Errorf("%w: %w", shared.ErrLinkFailed, err))
		}
	}

	res := Result{Phase: Linked, Route: session.RouteHome}
	f.mu.Lock()
	f.phase = Linked
	f.lastCode = code
	f.last = &res
	f.mu.Unlock()

	f.logger.Info("spotify account linked", "tokens_replaced", creds != nil)
	f.nav.Navigate(session.RouteHome)
	return res
}

func (f *Flow) fail(err error) Result {
	f.setPhase(Failed)
	f.logger.Error("linking failed", "error", err)
	f.nav.Navigate(session.RouteLogin)
	return Result{Phase: Failed, Route: session.RouteLogin, Err: err}
}

// HandleCallbackURL parses a pasted redirect URL (or bare query string) and calls [Flow.HandleCallback].
func (f *Flow) HandleCallbackURL(ctx context.Context, raw string) Result {
	query, err := parseCallback(raw)
	if err != nil {
		return f.fail(fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err))
	}
	return f.HandleCallback(ctx, query)
}

func parseCallback(raw string) (url.Values, error) {
	if raw == "" {
		return nil, errors.New("callback url is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.RawQuery != "" {
		return u.Query(), nil
	}
	return url.ParseQuery(raw)
}

// Listen serves the callback route on addr until one callback has been handled, the timeout elapses or ctx
// is canceled.
func (f *Flow) Listen(ctx context.Context, addr string, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var (
		mu  sync.Mutex
		res Result
	)
	// The exchange runs under ctx rather than the request context so that canceling Listen also
	// cancels an exchange in flight.
	handler := server.NewCallbackHandler(func(_ context.Context, q url.Values) error {
		r := f.HandleCallback(ctx, q)
		mu.Lock()
		res = r
		mu.Unlock()
		return r.Err
	})

	router := server.NewBasicRouter()
	router.Use(server.RecoverMiddleware(f.logger), server.LoggingMiddleware(f.logger))
	router.Handler(handler)

	l, err := server.Start(addr, router)
	if err != nil {
		return f.fail(fmt.Errorf("%w: %w", shared.ErrLinkFailed, err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.Shutdown(shutdownCtx); err != nil {
			f.logger.Warn("callback listener shutdown", "error", err)
		}
	}()

	f.logger.Info("waiting for spotify callback", "addr", l.Addr(), "timeout", timeout)
	if f.ready != nil {
		f.ready(l.Addr())
	}

	result := func() Result {
		<-handler.Result()
		mu.Lock()
		defer mu.Unlock()
		return res
	}

	// A callback accepted before the deadline is always seen through to its outcome.
	select {
	case <-handler.Result():
		return result()
	case <-time.After(timeout):
		if !handler.Stop() {
			return result()
		}
		return f.fail(fmt.Errorf("%w: %w: no callback within %s", shared.ErrLinkFailed, shared.ErrTimeout, timeout))
	case <-ctx.Done():
		if !handler.Stop() {
			return result()
		}
		return f.fail(fmt.Errorf("%w: %w", shared.ErrLinkFailed, ctx.Err()))
	}
}
