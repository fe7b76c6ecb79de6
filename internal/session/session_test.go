package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
	tu "github.com/desertthunder/wrapped/internal/testing"
)

type fakeBackend struct {
	creds      *models.Credentials
	loginErr   error
	profile    *models.Profile
	profileErr error
	deleteErr  error
	registered []models.RegisterRequest
	calls      map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) Login(ctx context.Context, username, password string) (*models.Credentials, error) {
	f.calls["login"]++
	return f.creds, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, req models.RegisterRequest) error {
	f.calls["register"]++
	f.registered = append(f.registered, req)
	return nil
}

func (f *fakeBackend) Profile(ctx context.Context) (*models.Profile, error) {
	f.calls["profile"]++
	return f.profile, f.profileErr
}

func (f *fakeBackend) DeleteAccount(ctx context.Context) error {
	f.calls["delete"]++
	return f.deleteErr
}

type fixture struct {
	storage *tu.MemoryStorage
	tokens  *session.TokenStore
	backend *fakeBackend
	history *session.History
	ctrl    *session.Controller
}

func newFixture() *fixture {
	storage := tu.NewMemoryStorage()
	tokens := session.NewTokenStore(storage)
	backend := newFakeBackend()
	history := session.NewHistory()
	return &fixture{
		storage: storage,
		tokens:  tokens,
		backend: backend,
		history: history,
		ctrl:    session.NewController(tokens, backend, history, nil),
	}
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, f.tokens.Set(models.Credentials{AccessToken: "a", RefreshToken: "r"}))
}

func TestTokenStore(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		store := session.NewTokenStore(tu.NewMemoryStorage())
		creds, err := store.Get()
		require.NoError(t, err)
		assert.Nil(t, creds)
		assert.False(t, store.HasSession())
	})

	t.Run("set get clear", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		store := session.NewTokenStore(storage)

		require.NoError(t, store.Set(models.Credentials{AccessToken: "a", RefreshToken: "r"}))
		creds, err := store.Get()
		require.NoError(t, err)
		require.NotNil(t, creds)
		assert.Equal(t, "a", creds.AccessToken)
		assert.Equal(t, "r", creds.RefreshToken)
		assert.Equal(t, map[string]string{"accessToken": "a", "refreshToken": "r"}, storage.Snapshot())

		require.NoError(t, store.Clear())
		creds, err = store.Get()
		require.NoError(t, err)
		assert.Nil(t, creds)
	})

	t.Run("reads are not cached", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		store := session.NewTokenStore(storage)
		other := session.NewTokenStore(storage)

		require.NoError(t, store.Set(models.Credentials{AccessToken: "first"}))
		require.NoError(t, other.Set(models.Credentials{AccessToken: "second"}))

		creds, err := store.Get()
		require.NoError(t, err)
		assert.Equal(t, "second", creds.AccessToken)
	})

	t.Run("rejects empty access token", func(t *testing.T) {
		store := session.NewTokenStore(tu.NewMemoryStorage())
		err := store.Set(models.Credentials{RefreshToken: "r"})
		require.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("storage failure", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		storage.Err = errors.New("locked")
		store := session.NewTokenStore(storage)

		_, err := store.Get()
		require.Error(t, err)
		assert.False(t, store.HasSession())
		require.Error(t, store.Clear())
	})
}

func TestPreferences(t *testing.T) {
	t.Run("defaults to light", func(t *testing.T) {
		prefs := session.NewPreferences(tu.NewMemoryStorage())
		theme, err := prefs.Theme()
		require.NoError(t, err)
		assert.Equal(t, session.ThemeLight, theme)
	})

	t.Run("toggle persists", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		prefs := session.NewPreferences(storage)

		theme, err := prefs.ToggleTheme()
		require.NoError(t, err)
		assert.Equal(t, session.ThemeDark, theme)
		assert.Equal(t, "dark", storage.Snapshot()["theme"])

		theme, err = prefs.ToggleTheme()
		require.NoError(t, err)
		assert.Equal(t, session.ThemeLight, theme)
		assert.Equal(t, "light", storage.Snapshot()["theme"])
	})

	t.Run("unrecognized stored value", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		require.NoError(t, storage.Set("theme", "sepia"))

		theme, err := session.NewPreferences(storage).Theme()
		require.NoError(t, err)
		assert.Equal(t, session.ThemeLight, theme)
	})

	t.Run("rejects unknown theme", func(t *testing.T) {
		err := session.NewPreferences(tu.NewMemoryStorage()).SetTheme("sepia")
		require.ErrorIs(t, err, shared.ErrInvalidArgument)
	})
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		route     session.Route
		protected bool
		base      session.Route
		param     string
	}{
		{route: session.RouteLogin, base: session.RouteLogin},
		{route: session.RouteRegister, base: session.RouteRegister},
		{route: session.RouteHome, protected: true, base: session.RouteHome},
		{route: session.DetailRoute("42"), protected: true, base: session.RouteDetail, param: "42"},
		{route: session.DetailRoute("a b"), protected: true, base: session.RouteDetail, param: "a b"},
		{route: session.RouteGame, base: session.RouteGame},
		{route: session.RouteCallback, base: session.RouteCallback},
	}

	for _, tc := range tests {
		t.Run(tc.route.String(), func(t *testing.T) {
			assert.Equal(t, tc.protected, tc.route.Protected())
			assert.Equal(t, tc.base, tc.route.Base())
			assert.Equal(t, tc.param, tc.route.Param())
		})
	}
}

func TestControllerEvaluate(t *testing.T) {
	t.Run("protected routes without token resolve to login", func(t *testing.T) {
		f := newFixture()
		for _, r := range []session.Route{session.RouteHome, session.DetailRoute("1")} {
			assert.Equal(t, session.RouteLogin, f.ctrl.Evaluate(r))
		}
		assert.Equal(t, session.Anonymous, f.ctrl.State().Status)
	})

	t.Run("public routes pass through", func(t *testing.T) {
		f := newFixture()
		for _, r := range []session.Route{session.RouteLogin, session.RouteRegister, session.RouteGame, session.RouteCallback} {
			assert.Equal(t, r, f.ctrl.Evaluate(r))
		}
	})

	t.Run("token promotes to tentative authenticated", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)

		assert.Equal(t, session.RouteHome, f.ctrl.Evaluate(session.RouteHome))
		assert.Equal(t, session.Authenticated, f.ctrl.State().Status)
	})

	t.Run("re-reads the store each time", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)
		assert.Equal(t, session.RouteHome, f.ctrl.Evaluate(session.RouteHome))

		require.NoError(t, f.storage.Remove(session.AccessTokenKey))
		assert.Equal(t, session.RouteLogin, f.ctrl.Evaluate(session.RouteHome))
	})

	t.Run("visit navigates to the resolved route", func(t *testing.T) {
		f := newFixture()
		assert.Equal(t, session.RouteLogin, f.ctrl.Visit(session.DetailRoute("9")))
		assert.Equal(t, session.RouteLogin, f.history.Current())
	})
}

func TestControllerLogin(t *testing.T) {
	t.Run("success stores tokens and navigates home", func(t *testing.T) {
		f := newFixture()
		f.backend.creds = &models.Credentials{AccessToken: "a1", RefreshToken: "r1"}

		require.NoError(t, f.ctrl.Login(context.Background(), "ada", "pw"))

		creds, err := f.tokens.Get()
		require.NoError(t, err)
		assert.Equal(t, "a1", creds.AccessToken)
		assert.Equal(t, "r1", creds.RefreshToken)
		assert.Equal(t, session.RouteHome, f.history.Current())
		assert.Equal(t, session.Authenticated, f.ctrl.State().Status)
	})

	t.Run("failure clears tokens and stays on login", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)
		f.backend.loginErr = errors.New("invalid credentials")

		err := f.ctrl.Login(context.Background(), "ada", "bad")
		require.Error(t, err)

		creds, err := f.tokens.Get()
		require.NoError(t, err)
		assert.Nil(t, creds)
		assert.Equal(t, session.RouteLogin, f.history.Current())
		assert.Equal(t, session.Anonymous, f.ctrl.State().Status)
	})
}

func TestControllerRegister(t *testing.T) {
	f := newFixture()
	req := models.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"}

	require.NoError(t, f.ctrl.Register(context.Background(), req))
	assert.Equal(t, []models.RegisterRequest{req}, f.backend.registered)
	assert.Equal(t, session.RouteLogin, f.history.Current())
}

func TestControllerEnterHome(t *testing.T) {
	t.Run("without token makes no request", func(t *testing.T) {
		f := newFixture()

		_, err := f.ctrl.EnterHome(context.Background())
		require.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Zero(t, f.backend.calls["profile"])
		assert.Equal(t, session.RouteLogin, f.history.Current())
	})

	t.Run("linked profile", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)
		f.backend.profile = &models.Profile{Username: "ada", SpotifyLinked: true}

		p, err := f.ctrl.EnterHome(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ada", p.Username)
		assert.Equal(t, session.AuthenticatedLinked, f.ctrl.State().Status)
		assert.True(t, f.ctrl.CanGenerate())
	})

	t.Run("unlinked profile", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)
		f.backend.profile = &models.Profile{Username: "ada"}

		_, err := f.ctrl.EnterHome(context.Background())
		require.NoError(t, err)
		assert.Equal(t, session.Authenticated, f.ctrl.State().Status)
		assert.False(t, f.ctrl.CanGenerate())
	})

	t.Run("profile failure ends session but keeps tokens", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)
		f.backend.profileErr = errors.New("401")

		_, err := f.ctrl.EnterHome(context.Background())
		require.Error(t, err)
		assert.Equal(t, session.Anonymous, f.ctrl.State().Status)
		assert.Equal(t, session.RouteLogin, f.history.Current())
		assert.True(t, f.tokens.HasSession())
	})
}

func TestControllerLogout(t *testing.T) {
	f := newFixture()
	f.signIn(t)
	f.backend.profile = &models.Profile{SpotifyLinked: true}
	_, err := f.ctrl.EnterHome(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.ctrl.Logout())

	assert.Empty(t, f.storage.Snapshot())
	assert.Equal(t, session.Anonymous, f.ctrl.State().Status)
	assert.Equal(t, session.RouteLogin, f.history.Current())
	assert.Equal(t, session.RouteLogin, f.ctrl.Evaluate(session.RouteHome))
}

func TestControllerDeleteAccount(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		f := newFixture()
		require.ErrorIs(t, f.ctrl.DeleteAccount(context.Background()), shared.ErrNotAuthenticated)
		assert.Zero(t, f.backend.calls["delete"])
	})

	t.Run("success clears tokens", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)

		require.NoError(t, f.ctrl.DeleteAccount(context.Background()))
		assert.False(t, f.tokens.HasSession())
		assert.Equal(t, session.RouteLogin, f.history.Current())
	})

	t.Run("failure keeps state", func(t *testing.T) {
		f := newFixture()
		f.signIn(t)
		f.backend.deleteErr = errors.New("500")

		require.Error(t, f.ctrl.DeleteAccount(context.Background()))
		assert.True(t, f.tokens.HasSession())
		assert.Empty(t, f.history.Routes())
	})
}

type unauthorizedErr struct{}

func (unauthorizedErr) Error() string      { return "401" }
func (unauthorizedErr) Unauthorized() bool { return true }

func TestIsSessionError(t *testing.T) {
	assert.True(t, session.IsSessionError(shared.ErrNotAuthenticated))
	assert.True(t, session.IsSessionError(unauthorizedErr{}))
	assert.False(t, session.IsSessionError(errors.New("boom")))
	assert.False(t, session.IsSessionError(nil))
}
