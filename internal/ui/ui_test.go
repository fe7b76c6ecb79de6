package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/tasks"
	tu "github.com/desertthunder/wrapped/internal/testing"
	"github.com/desertthunder/wrapped/internal/wrapped"
)

const history = `[
  {"id": 1, "title": "Long Term Wrapped", "image": "https://img/1", "artists": [
    {"name": "Phoebe", "top_song": "Motion Sickness", "song_preview": "https://p.scdn.co/mp3-preview/ms"},
    {"name": "Julien", "top_song": "Sharon"}
  ]},
  {"id": 2, "title": "Medium Term Wrapped", "image": "https://img/2", "artists": [{"name": "Lucy"}]}
]`

type uiEnv struct {
	stub    *tu.BackendStub
	storage *tu.MemoryStorage
	tokens  *session.TokenStore
	deps    Deps
	opened  []string
}

func newUIEnv(t *testing.T, signedIn bool) *uiEnv {
	t.Helper()

	stub := tu.NewBackendStub()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	storage := tu.NewMemoryStorage()
	tokens := session.NewTokenStore(storage)
	if signedIn {
		if err := tokens.Set(models.Credentials{AccessToken: "access"}); err != nil {
			t.Fatalf("failed to seed tokens: %v", err)
		}
	}

	backend := services.NewBackend(services.NewGateway(srv.URL+"/api/", tokens))
	nav := session.NewHistory()
	controller := session.NewController(tokens, backend, nav, nil)
	collection := wrapped.NewCollection(backend, controller, nav)

	env := &uiEnv{stub: stub, storage: storage, tokens: tokens}
	env.deps = Deps{
		Controller:  controller,
		Collection:  collection,
		Engine:      tasks.NewWrappedEngine(controller, collection, nil),
		Preferences: session.NewPreferences(storage),
		History:     nav,
		OpenURL: func(u string) error {
			env.opened = append(env.opened, u)
			return nil
		},
	}
	return env
}

func (e *uiEnv) mount(t *testing.T, linked bool) *Model {
	t.Helper()
	e.stub.Handle(http.MethodGet, "/api/profile/", http.StatusOK, map[string]any{"username": "ada", "spotify_linked": linked})
	e.stub.Handle(http.MethodGet, "/api/spotify/wrapped-history/", http.StatusOK, history)

	m := NewModel(context.Background(), e.deps)
	result, err := e.deps.Engine.LoadHome(context.Background(), nil)
	m.Update(homeLoadedMsg(result, err))
	if m.view != HomeView {
		t.Fatalf("expected home view after mount, got %d", m.view)
	}
	return m
}

func press(m *Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

// drain runs cmd and feeds every resulting [Msg] back into the model, following the commands they return.
// Callers must not drain commands that schedule trivia ticks.
func drain(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(m, c)
		}
	case Msg:
		_, next := m.Update(msg)
		drain(m, next)
	}
}

func TestInit(t *testing.T) {
	t.Run("without session shows login", func(t *testing.T) {
		env := newUIEnv(t, false)
		m := NewModel(context.Background(), env.deps)

		m.Init()
		if m.view != LoginView {
			t.Errorf("expected login view, got %d", m.view)
		}
		if env.stub.Calls() != 0 {
			t.Errorf("expected no requests, got %d", env.stub.Calls())
		}
		if !strings.Contains(m.View(), "Log in") {
			t.Errorf("expected login form, got:\n%s", m.View())
		}
	})

	t.Run("with session mounts home", func(t *testing.T) {
		env := newUIEnv(t, true)
		env.stub.Handle(http.MethodGet, "/api/profile/", http.StatusOK, map[string]any{"username": "ada"})
		env.stub.Handle(http.MethodGet, "/api/spotify/wrapped-history/", http.StatusOK, history)
		m := NewModel(context.Background(), env.deps)

		drain(m, m.Init())

		if m.view != HomeView {
			t.Fatalf("expected home view, got %d", m.view)
		}
		if m.loading {
			t.Error("expected loading to finish")
		}
		if len(m.home.Snapshots) != 2 {
			t.Errorf("expected 2 snapshots, got %d", len(m.home.Snapshots))
		}
		if !strings.Contains(m.View(), "Welcome, ada") {
			t.Errorf("expected welcome, got:\n%s", m.View())
		}
	})

	t.Run("profile failure returns to login", func(t *testing.T) {
		env := newUIEnv(t, true)
		env.stub.Handle(http.MethodGet, "/api/profile/", http.StatusUnauthorized, map[string]string{"detail": "expired"})
		m := NewModel(context.Background(), env.deps)

		drain(m, m.Init())

		if m.view != LoginView {
			t.Errorf("expected login view, got %d", m.view)
		}
		if !strings.HasPrefix(m.alert, "✗") {
			t.Errorf("expected error alert, got %q", m.alert)
		}
	})
}

func TestLogin(t *testing.T) {
	env := newUIEnv(t, false)
	env.stub.Handle(http.MethodPost, "/api/login/", http.StatusOK, map[string]string{"access": "a", "refresh": "r"})
	env.stub.Handle(http.MethodGet, "/api/profile/", http.StatusOK, map[string]any{"username": "ada"})
	env.stub.Handle(http.MethodGet, "/api/spotify/wrapped-history/", http.StatusOK, `[]`)

	m := NewModel(context.Background(), env.deps)
	m.Init()

	if cmd := press(m, "enter"); cmd != nil {
		t.Error("expected enter on the first field to move focus")
	}
	if cmd := press(m, "enter"); cmd != nil || !strings.HasPrefix(m.alert, "⚠") {
		t.Errorf("expected a warning for empty fields, got %q", m.alert)
	}

	m.inputs[0].SetValue("ada")
	m.inputs[1].SetValue("secret")
	drain(m, press(m, "enter"))

	if m.view != HomeView {
		t.Fatalf("expected home view, got %d", m.view)
	}
	if !env.tokens.HasSession() {
		t.Error("expected tokens to be stored")
	}
	if !strings.Contains(m.View(), "No Wrapped yet") {
		t.Errorf("expected empty home, got:\n%s", m.View())
	}
}

func TestHomeCarousel(t *testing.T) {
	env := newUIEnv(t, true)
	m := env.mount(t, true)

	press(m, "left")
	if m.carousel != 1 {
		t.Errorf("expected carousel to wrap to 1, got %d", m.carousel)
	}
	press(m, "right")
	if m.carousel != 0 {
		t.Errorf("expected carousel to wrap to 0, got %d", m.carousel)
	}

	press(m, "enter")
	if m.view != DetailView || m.detail.ID != "1" {
		t.Fatalf("expected detail of snapshot 1, got view %d id %q", m.view, m.detail.ID)
	}
	if env.deps.History.Current() != session.DetailRoute("1") {
		t.Errorf("unexpected route %s", env.deps.History.Current())
	}
}

func TestDetail(t *testing.T) {
	env := newUIEnv(t, true)
	m := env.mount(t, true)
	press(m, "enter")

	press(m, "left")
	if m.artist != 1 {
		t.Errorf("expected artist index to wrap to 1, got %d", m.artist)
	}

	press(m, "o")
	if len(env.opened) != 0 || !strings.HasPrefix(m.alert, "⚠") {
		t.Errorf("expected missing preview warning, got %q (opened %v)", m.alert, env.opened)
	}

	press(m, "right")
	press(m, "o")
	if len(env.opened) != 1 || env.opened[0] != "https://p.scdn.co/mp3-preview/ms" {
		t.Errorf("expected preview to open, got %v", env.opened)
	}

	t.Run("publish", func(t *testing.T) {
		env.stub.Handle(http.MethodPost, "/api/wrapped/make-public/1/", http.StatusOK, map[string]string{"status": "ok"})
		drain(m, press(m, "p"))
		if !m.detail.Public {
			t.Error("expected snapshot to be public")
		}
	})

	t.Run("delete missing snapshot", func(t *testing.T) {
		drain(m, press(m, "d"))
		if m.view != DetailView {
			t.Errorf("expected to stay on detail, got %d", m.view)
		}
		if !strings.Contains(m.alert, "404") {
			t.Errorf("expected a 404 alert, got %q", m.alert)
		}
	})

	t.Run("delete returns home", func(t *testing.T) {
		env.stub.Handle(http.MethodDelete, "/api/wrapped-history/1/delete/", http.StatusNoContent, nil)
		drain(m, press(m, "d"))
		if m.view != HomeView {
			t.Errorf("expected home view, got %d", m.view)
		}
	})

	t.Run("esc returns home", func(t *testing.T) {
		press(m, "enter")
		press(m, "esc")
		if m.view != HomeView {
			t.Errorf("expected home view, got %d", m.view)
		}
	})
}

func TestProtectedRoutesWithoutSession(t *testing.T) {
	t.Run("opening a snapshot", func(t *testing.T) {
		env := newUIEnv(t, true)
		m := env.mount(t, true)
		if err := env.tokens.Clear(); err != nil {
			t.Fatalf("failed to clear tokens: %v", err)
		}

		press(m, "enter")
		if m.view != LoginView {
			t.Errorf("expected login view, got %d", m.view)
		}
		if got := env.deps.History.Current(); got != session.RouteLogin {
			t.Errorf("expected history at %q, got %q", session.RouteLogin, got)
		}
		if m.home != nil {
			t.Error("expected home data to be dropped")
		}
	})

	t.Run("leaving a snapshot", func(t *testing.T) {
		env := newUIEnv(t, true)
		m := env.mount(t, true)
		press(m, "enter")
		if m.view != DetailView {
			t.Fatalf("expected detail view, got %d", m.view)
		}
		if err := env.tokens.Clear(); err != nil {
			t.Fatalf("failed to clear tokens: %v", err)
		}

		press(m, "esc")
		if m.view != LoginView {
			t.Errorf("expected login view, got %d", m.view)
		}
		if got := env.deps.History.Current(); got != session.RouteLogin {
			t.Errorf("expected history at %q, got %q", session.RouteLogin, got)
		}
	})
}

func TestGenerate(t *testing.T) {
	t.Run("unlinked warns without a request", func(t *testing.T) {
		env := newUIEnv(t, true)
		m := env.mount(t, false)
		before := env.stub.Calls()

		drain(m, press(m, "1"))

		if env.stub.Calls() != before {
			t.Errorf("expected no requests, got %d", env.stub.Calls()-before)
		}
		if !strings.HasPrefix(m.alert, "⚠") {
			t.Errorf("expected warning, got %q", m.alert)
		}
	})

	t.Run("linked appends and focuses", func(t *testing.T) {
		env := newUIEnv(t, true)
		m := env.mount(t, true)
		env.stub.Handle(http.MethodGet, "/api/spotify/wrapped-data/short/", http.StatusOK, `{"items": [{"name": "New", "images": []}]}`)

		drain(m, press(m, "1"))

		if len(m.home.Snapshots) != 3 || m.carousel != 2 {
			t.Fatalf("expected 3 snapshots focused on the last, got %d at %d", len(m.home.Snapshots), m.carousel)
		}
		if m.home.Snapshots[2].Title != "Short-Term Wrapped" {
			t.Errorf("unexpected title %q", m.home.Snapshots[2].Title)
		}
	})
}

func TestGame(t *testing.T) {
	env := newUIEnv(t, true)
	m := env.mount(t, true)

	press(m, "g")
	if m.view != GameView || m.game == nil {
		t.Fatalf("expected game view, got %d", m.view)
	}
	if m.remaining != 10 {
		t.Errorf("expected 10 seconds, got %d", m.remaining)
	}

	t.Run("stale ticks are ignored", func(t *testing.T) {
		m.Update(tickMsg(m.tickID - 1))
		if m.remaining != 10 {
			t.Errorf("expected stale tick to be ignored, got %d", m.remaining)
		}
	})

	t.Run("timeout advances", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			m.Update(tickMsg(m.tickID))
		}
		if m.game.Index() != 1 || m.game.Score() != 0 {
			t.Errorf("expected timeout to advance without scoring, index %d score %d", m.game.Index(), m.game.Score())
		}
		if m.remaining != 10 {
			t.Errorf("expected timer reset, got %d", m.remaining)
		}
	})

	t.Run("answer and restart", func(t *testing.T) {
		for !m.game.Over() {
			q, _ := m.game.Current()
			for i, opt := range q.Options {
				if opt == q.Answer {
					m.choice = i
				}
			}
			press(m, "enter")
		}
		if m.game.Score() != m.game.Len()-1 {
			t.Errorf("expected %d correct answers, got %d", m.game.Len()-1, m.game.Score())
		}
		if !strings.Contains(m.View(), "Game Over!") {
			t.Errorf("expected game over screen, got:\n%s", m.View())
		}

		press(m, "r")
		if m.game.Over() || m.game.Score() != 0 {
			t.Error("expected game to restart")
		}

		press(m, "esc")
		if m.view != HomeView || m.game != nil {
			t.Error("expected to leave the game")
		}
	})
}

func TestThemeAndLogout(t *testing.T) {
	env := newUIEnv(t, true)
	m := env.mount(t, true)

	if m.theme != session.ThemeLight || m.styles != lightPalette {
		t.Errorf("expected light theme by default, got %s", m.theme)
	}

	press(m, "t")
	if m.theme != session.ThemeDark || m.styles != darkPalette {
		t.Errorf("expected dark theme, got %s", m.theme)
	}
	if v, _, _ := env.storage.Get(session.ThemeKey); v != "dark" {
		t.Errorf("expected stored theme, got %q", v)
	}

	press(m, "L")
	if m.view != LoginView {
		t.Errorf("expected login view, got %d", m.view)
	}
	if env.tokens.HasSession() {
		t.Error("expected tokens to be cleared")
	}
}

func TestPublic(t *testing.T) {
	env := newUIEnv(t, true)
	m := env.mount(t, true)
	env.stub.Handle(http.MethodGet, "/api/public_histories/", http.StatusOK, `[{"id": 7, "title": "Shared", "artists": []}]`)

	drain(m, press(m, "P"))
	if m.view != PublicView {
		t.Fatalf("expected public view, got %d", m.view)
	}
	if len(m.public.Items()) != 1 {
		t.Errorf("expected 1 public snapshot, got %d", len(m.public.Items()))
	}

	press(m, "esc")
	if m.view != HomeView {
		t.Errorf("expected home view, got %d", m.view)
	}
}

func TestFailAlerts(t *testing.T) {
	env := newUIEnv(t, false)
	m := NewModel(context.Background(), env.deps)

	m.fail("Could not do it", errors.New("boom"))
	if m.alert != "✗ Could not do it: boom" {
		t.Errorf("unexpected alert %q", m.alert)
	}
}

func TestWrapAndClamp(t *testing.T) {
	tests := []struct{ i, n, wrap, clamp int }{
		{-1, 3, 2, 0},
		{3, 3, 0, 2},
		{1, 3, 1, 1},
		{5, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := wrap(tt.i, tt.n); got != tt.wrap {
			t.Errorf("wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.wrap)
		}
		if got := clamp(tt.i, tt.n); got != tt.clamp {
			t.Errorf("clamp(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.clamp)
		}
	}
}
