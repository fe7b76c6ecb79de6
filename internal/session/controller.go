package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// Status is the session lifecycle state.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
	AuthenticatedLinked
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case AuthenticatedLinked:
		return "authenticated (spotify linked)"
	}
	return "unknown"
}

// State is the single source of truth for the session. Linked is derived from Profile.
type State struct {
	Status  Status
	Profile *models.Profile
}

// Linked reports whether the profile says a Spotify account is linked.
func (s State) Linked() bool {
	return s.Profile != nil && s.Profile.SpotifyLinked
}

// Backend is the subset of the backend client used by the [Controller].
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.Credentials, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	Profile(ctx context.Context) (*models.Profile, error)
	DeleteAccount(ctx context.Context) error
}

// Controller drives the session state machine and the route guard.
type Controller struct {
	mu      sync.RWMutex
	state   State
	tokens  *TokenStore
	backend Backend
	nav     Navigator
	logger  *log.Logger
}

// NewController creates a [Controller]. A nil logger discards output.
func NewController(tokens *TokenStore, backend Backend, nav Navigator, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{tokens: tokens, backend: backend, nav: nav, logger: logger}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) set(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Evaluate resolves route against the token store, which is re-read on every call.
//
// Protected routes resolve to [RouteLogin] without a token. With a token an anonymous session is
// tentatively promoted to [Authenticated] until the profile is fetched.
func (c *Controller) Evaluate(route Route) Route {
	has := c.tokens.HasSession()
	if route.Protected() && !has {
		return RouteLogin
	}

	if has {
		c.mu.Lock()
		if c.state.Status == Anonymous {
			c.state.Status = Authenticated
		}
		c.mu.Unlock()
	}
	return route
}

// Visit evaluates route and navigates to the result.
func (c *Controller) Visit(route Route) Route {
	resolved := c.Evaluate(route)
	c.nav.Navigate(resolved)
	return resolved
}

// Login authenticates with the backend and stores the returned tokens.
//
// On failure the token store is cleared and the user stays on the login route.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	c.set(State{Status: Authenticating})

	creds, err := c.backend.Login(ctx, username, password)
	if err == nil && creds == nil {
		err = shared.ErrInvalidResponse
	}
	if err == nil {
		err = c.tokens.Set(*creds)
	}
	if err != nil {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.logger.Error("failed to clear tokens after login failure", "error", clearErr)
		}
		c.set(State{Status: Anonymous})
		c.nav.Navigate(RouteLogin)
		return err
	}

	c.logger.Info("logged in", "username", username)
	c.set(State{Status: Authenticated})
	c.nav.Navigate(RouteHome)
	return nil
}

// Register creates an account and sends the user to the login route.
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := c.backend.Register(ctx, req); err != nil {
		return err
	}
	c.logger.Info("registered", "username", req.Username)
	c.nav.Navigate(RouteLogin)
	return nil
}

// EnterHome guards the home route and fetches the profile.
//
// Any failure ends the session view: status becomes [Anonymous] and the user is sent to login.
// Stored tokens are left in place.
func (c *Controller) EnterHome(ctx context.Context) (*models.Profile, error) {
	if c.Evaluate(RouteHome) == RouteLogin {
		c.set(State{Status: Anonymous})
		c.nav.Navigate(RouteLogin)
		return nil, shared.ErrNotAuthenticated
	}

	profile, err := c.backend.Profile(ctx)
	if err != nil {
		c.logger.Error("failed to fetch profile", "error", err)
		c.set(State{Status: Anonymous})
		c.nav.Navigate(RouteLogin)
		return nil, err
	}

	status := Authenticated
	if profile.SpotifyLinked {
		status = AuthenticatedLinked
	}
	c.set(State{Status: status, Profile: profile})
	c.nav.Navigate(RouteHome)
	return profile, nil
}

// Logout clears the tokens unconditionally and sends the user to login.
func (c *Controller) Logout() error {
	err := c.tokens.Clear()
	c.set(State{Status: Anonymous})
	c.nav.Navigate(RouteLogin)
	return err
}

// DeleteAccount deletes the account on the backend, then behaves like [Controller.Logout].
//
// Without a stored token it returns [shared.ErrNotAuthenticated] and makes no request. On failure the
// session is left as it was.
func (c *Controller) DeleteAccount(ctx context.Context) error {
	if !c.tokens.HasSession() {
		return shared.ErrNotAuthenticated
	}

	if err := c.backend.DeleteAccount(ctx); err != nil {
		return err
	}

	c.logger.Info("account deleted")
	return c.Logout()
}

// CanGenerate reports whether snapshot generation is allowed.
func (c *Controller) CanGenerate() bool {
	return c.State().Status == AuthenticatedLinked
}

// IsSessionError reports errors after which the user must sign in again.
func IsSessionError(err error) bool {
	if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrSessionInvalid) {
		return true
	}
	var unauthorized interface{ Unauthorized() bool }
	return errors.As(err, &unauthorized) && unauthorized.Unauthorized()
}
