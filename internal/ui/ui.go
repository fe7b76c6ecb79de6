package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/session"
	"github.com/desertthunder/wrapped/internal/shared"
	"github.com/desertthunder/wrapped/internal/tasks"
	"github.com/desertthunder/wrapped/internal/trivia"
	"github.com/desertthunder/wrapped/internal/wrapped"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	HomeView
	DetailView
	GameView
	PublicView
)

// Deps are the components the TUI drives. OpenURL defaults to [shared.OpenBrowser]; a nil Logger discards output.
type Deps struct {
	Controller  *session.Controller
	Collection  *wrapped.Collection
	Engine      *tasks.WrappedEngine
	Preferences *session.Preferences
	History     *session.History
	OpenURL     func(string) error
	Logger      *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	deps   Deps
	logger *log.Logger

	view   ViewState
	width  int
	height int
	theme  session.Theme
	styles *Palette

	loading      bool
	spinner      spinner.Model
	progress     tasks.ProgressUpdate
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg

	inputs      []textinput.Model
	focus       int
	registering bool

	home     *tasks.HomeResult
	carousel int

	detail     models.Snapshot
	artist     int
	artists    list.Model
	hasArtists bool

	game      *trivia.Game
	choice    int
	remaining int
	tickID    int

	public    list.Model
	hasPublic bool

	alert string
	help  help.Model
	keys  keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard)
	}
	if deps.OpenURL == nil {
		deps.OpenURL = shared.OpenBrowser
	}

	theme := session.ThemeLight
	if deps.Preferences != nil {
		t, err := deps.Preferences.Theme()
		if err != nil {
			deps.Logger.Warn("failed to read theme", "error", err)
		}
		theme = t
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		deps:    deps,
		logger:  deps.Logger,
		view:    LoginView,
		theme:   theme,
		styles:  PaletteFor(theme),
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.resetInputs()
	return m
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init evaluates the home route and either mounts home or shows the login form.
func (m *Model) Init() tea.Cmd {
	if m.deps.Controller.Visit(session.RouteHome) == session.RouteLogin {
		m.syncRoute()
		return textinput.Blink
	}
	return tea.Batch(m.spinner.Tick, m.startHome())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.listSize()
		if m.hasArtists {
			m.artists.SetSize(w, m.artistListHeight())
		}
		if m.hasPublic {
			m.public.SetSize(w, h)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case HomeView:
			return m.handleHomeKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case GameView:
			return m.handleGameKeys(msg)
		case PublicView:
			return m.handlePublicKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgHomeLoaded:
		d := msg.data.(homeLoaded)
		m.loading = false
		m.progressChan = nil
		m.doneChan = nil
		if d.err != nil {
			m.fail("Could not load your profile", d.err)
			m.home = nil
			m.syncRoute()
			return m, textinput.Blink
		}
		m.home = d.result
		if d.result.HistoryErr != nil {
			m.alert = fmt.Sprintf("⚠ Could not load your Wrapped history: %v", d.result.HistoryErr)
		}
		m.carousel = clamp(m.carousel, len(m.home.Snapshots))
		m.syncRoute()
		return m, nil

	case MsgLoggedIn:
		m.loading = false
		if err, _ := msg.data.(error); err != nil {
			m.fail("Login failed", err)
			m.inputs[len(m.inputs)-1].SetValue("")
			m.syncRoute()
			return m, textinput.Blink
		}
		m.alert = ""
		return m, tea.Batch(m.spinner.Tick, m.startHome())

	case MsgRegistered:
		m.loading = false
		if err, _ := msg.data.(error); err != nil {
			m.fail("Registration failed", err)
			return m, nil
		}
		m.syncRoute()
		m.alert = "✓ Account created, please log in"
		return m, textinput.Blink

	case MsgGenerated:
		m.loading = false
		d := msg.data.(snapshotResult)
		if d.err != nil {
			m.fail("Could not generate your Wrapped", d.err)
			return m, nil
		}
		m.refreshSnapshots()
		m.carousel = len(m.home.Snapshots) - 1
		m.alert = fmt.Sprintf("✓ Generated %s", d.snapshot.Title)
		return m, nil

	case MsgDeleted:
		m.loading = false
		d := msg.data.(snapshotResult)
		if d.err != nil {
			m.fail("Could not delete this Wrapped", d.err)
			return m, nil
		}
		m.alert = "✓ Wrapped deleted"
		m.hasArtists = false
		m.carousel = 0
		m.syncRoute()
		return m, tea.Batch(m.spinner.Tick, m.startHome())

	case MsgPublished:
		m.loading = false
		d := msg.data.(snapshotResult)
		if d.err != nil {
			m.fail("Could not publish this Wrapped", d.err)
			return m, nil
		}
		if m.detail.ID == d.id {
			m.detail.Public = true
		}
		m.refreshSnapshots()
		m.alert = "✓ Wrapped is now public"
		return m, nil

	case MsgPublicLoaded:
		m.loading = false
		d := msg.data.(publicLoaded)
		if d.err != nil {
			m.fail("Could not load public Wrapped", d.err)
			return m, nil
		}
		w, h := m.listSize()
		m.public = list.New(snapshotItems(d.snapshots), list.NewDefaultDelegate(), w, h)
		m.public.Title = "Public Wrapped"
		m.public.SetShowHelp(false)
		m.hasPublic = true
		m.view = PublicView
		return m, nil

	case MsgTick:
		id, _ := msg.data.(int)
		if m.view != GameView || m.game == nil || m.game.Over() || id != m.tickID {
			return m, nil
		}
		m.remaining--
		if m.remaining <= 0 {
			m.game.Submit()
			return m, m.nextQuestion()
		}
		return m, m.tick()
	}
	return m, nil
}

// syncRoute points the view at the navigator's current route.
func (m *Model) syncRoute() {
	route := m.deps.History.Current()
	switch route.Base() {
	case session.RouteLogin, session.RouteRegister:
		registering := route == session.RouteRegister
		if m.view != LoginView || m.registering != registering {
			m.registering = registering
			m.resetInputs()
		}
		m.view = LoginView
	case session.RouteHome:
		m.view = HomeView
	case session.RouteDetail:
		m.openDetail(route.Param())
	case session.RouteGame:
		m.view = GameView
	}
}

// navigate enters r through the session guard. A protected route entered without a stored token
// lands on login and drops the loaded home data.
func (m *Model) navigate(r session.Route) {
	if m.deps.Controller.Visit(r) == session.RouteLogin && r.Protected() {
		m.home = nil
		m.alert = "Session ended, please log in again"
	}
	m.syncRoute()
}

func (m *Model) fail(action string, err error) {
	m.logger.Error(action, "error", err)
	switch {
	case errors.Is(err, shared.ErrPreconditionNotMet):
		m.alert = fmt.Sprintf("⚠ %s: %v (run `wrapped spotify link`)", action, err)
	default:
		m.alert = fmt.Sprintf("✗ %s: %v", action, err)
	}
}

func (m *Model) refreshSnapshots() {
	if m.home == nil {
		m.home = &tasks.HomeResult{}
	}
	m.home.Snapshots = m.deps.Collection.Snapshots()
}

func (m *Model) resetInputs() {
	placeholders := []string{"Username", "Password"}
	if m.registering {
		placeholders = []string{"Username", "Email", "Password"}
	}

	m.inputs = make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 128
		if p == "Password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs[i] = in
	}
	m.focus = 0
	m.inputs[0].Focus()
}

func (m *Model) focusInput(i int) {
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.focusInput(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusInput(m.focus - 1)
		return m, nil
	case "ctrl+r":
		if m.registering {
			m.navigate(session.RouteLogin)
		} else {
			m.navigate(session.RouteRegister)
		}
		m.alert = ""
		return m, textinput.Blink
	case "enter":
		if m.focus < len(m.inputs)-1 {
			m.focusInput(m.focus + 1)
			return m, nil
		}
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) submitLogin() tea.Cmd {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = strings.TrimSpace(in.Value())
	}
	for _, v := range values {
		if v == "" {
			m.alert = "⚠ Please fill in every field"
			return nil
		}
	}

	m.loading = true
	m.alert = ""
	if m.registering {
		req := models.RegisterRequest{Username: values[0], Email: values[1], Password: values[2]}
		return tea.Batch(m.spinner.Tick, func() tea.Msg {
			return registeredMsg(m.deps.Controller.Register(m.ctx, req))
		})
	}

	username, password := values[0], values[1]
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return loggedInMsg(m.deps.Controller.Login(m.ctx, username, password))
	})
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := 0
	if m.home != nil {
		n = len(m.home.Snapshots)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.left):
		m.carousel = wrap(m.carousel-1, n)
	case key.Matches(msg, m.keys.right):
		m.carousel = wrap(m.carousel+1, n)
	case key.Matches(msg, m.keys.enter):
		if n > 0 {
			m.navigate(session.DetailRoute(m.home.Snapshots[m.carousel].ID))
		}
	case key.Matches(msg, m.keys.generate):
		term := models.Terms()[int(msg.String()[0]-'1')]
		m.loading = true
		m.alert = ""
		return m, tea.Batch(m.spinner.Tick, m.generate(term))
	case key.Matches(msg, m.keys.game):
		m.navigate(session.RouteGame)
		return m, m.startGame()
	case key.Matches(msg, m.keys.public):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadPublic())
	case key.Matches(msg, m.keys.theme):
		m.toggleTheme()
	case key.Matches(msg, m.keys.logout):
		if err := m.deps.Controller.Logout(); err != nil {
			m.fail("Could not clear session", err)
		}
		m.home = nil
		m.syncRoute()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) openDetail(id string) {
	s, err := m.deps.Collection.Get(id)
	if err != nil {
		m.fail("Could not open Wrapped", err)
		m.navigate(session.RouteHome)
		return
	}

	m.detail = s
	m.artist = 0
	w, _ := m.listSize()
	m.artists = list.New(artistItems(s.Artists), list.NewDefaultDelegate(), w, m.artistListHeight())
	m.artists.Title = "Ranking"
	m.artists.SetShowHelp(false)
	m.artists.SetShowStatusBar(false)
	m.artists.SetFilteringEnabled(false)
	m.hasArtists = true
	m.view = DetailView
}

// listSize falls back to 80x24 until the first window size message arrives.
func (m *Model) listSize() (int, int) {
	if m.width == 0 || m.height == 0 {
		return 76, 16
	}
	return m.width - 4, m.height - 8
}

func (m *Model) artistListHeight() int {
	if m.height < 24 {
		return 8
	}
	return m.height - 16
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.detail.Artists)
	id := m.detail.ID

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.navigate(session.RouteHome)
	case key.Matches(msg, m.keys.left):
		m.artist = wrap(m.artist-1, n)
		m.artists.Select(m.artist)
	case key.Matches(msg, m.keys.right):
		m.artist = wrap(m.artist+1, n)
		m.artists.Select(m.artist)
	case key.Matches(msg, m.keys.publish):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return publishedMsg(id, m.deps.Collection.Publish(m.ctx, id))
		})
	case key.Matches(msg, m.keys.delete):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return deletedMsg(id, m.deps.Collection.Delete(m.ctx, id))
		})
	case key.Matches(msg, m.keys.open):
		m.openPreview()
	}
	return m, nil
}

func (m *Model) openPreview() {
	if m.artist >= len(m.detail.Artists) {
		return
	}
	a := m.detail.Artists[m.artist]
	if a.PreviewURL == "" {
		m.alert = fmt.Sprintf("⚠ No preview available for %s", a.Name)
		return
	}
	if err := m.deps.OpenURL(a.PreviewURL); err != nil {
		m.fail("Could not open preview", err)
		return
	}
	m.alert = fmt.Sprintf("✓ Opened preview of %s", a.TopSong)
}

func (m *Model) startGame() tea.Cmd {
	g, err := trivia.NewGame(m.deps.Collection.Snapshots())
	if err != nil {
		m.fail("Trivia needs at least one Wrapped", err)
		m.game = nil
		m.navigate(session.RouteHome)
		return nil
	}
	m.game = g
	return m.nextQuestion()
}

// nextQuestion resets the selection and timer for the current question.
func (m *Model) nextQuestion() tea.Cmd {
	m.choice = 0
	m.tickID++
	if m.game == nil || m.game.Over() {
		return nil
	}
	m.remaining = int(trivia.TimeLimit / time.Second)
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	id := m.tickID
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg(id) })
}

func (m *Model) handleGameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.game == nil {
		m.navigate(session.RouteHome)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.tickID++
		m.game = nil
		m.navigate(session.RouteHome)
		return m, nil
	case key.Matches(msg, m.keys.restart):
		if m.game.Over() {
			m.game.Restart()
			return m, m.nextQuestion()
		}
	}

	q, ok := m.game.Current()
	if !ok {
		return m, nil
	}

	switch s := msg.String(); {
	case key.Matches(msg, m.keys.up):
		m.choice = wrap(m.choice-1, len(q.Options))
	case key.Matches(msg, m.keys.down):
		m.choice = wrap(m.choice+1, len(q.Options))
	case len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(q.Options):
		m.choice = int(s[0] - '1')
	case key.Matches(msg, m.keys.enter):
		if err := m.game.Select(q.Options[m.choice]); err != nil {
			m.fail("Invalid answer", err)
			return m, nil
		}
		m.game.Submit()
		return m, m.nextQuestion()
	}
	return m, nil
}

func (m *Model) handlePublicKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = HomeView
		return m, nil
	case msg.String() == "q" && m.public.FilterState() != list.Filtering:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.public, cmd = m.public.Update(msg)
	return m, cmd
}

func (m *Model) toggleTheme() {
	if m.deps.Preferences == nil {
		return
	}
	theme, err := m.deps.Preferences.ToggleTheme()
	if err != nil {
		m.fail("Could not save theme", err)
		return
	}
	m.theme = theme
	m.styles = PaletteFor(theme)
	m.alert = fmt.Sprintf("✓ Switched to %s theme", theme)
}

// startHome mounts the home screen in the background, streaming progress until it finishes.
func (m *Model) startHome() tea.Cmd {
	prog := make(chan tasks.ProgressUpdate, 8)
	done := make(chan Msg, 1)
	m.progressChan = prog
	m.doneChan = done
	m.loading = true

	go func() {
		result, err := m.deps.Engine.LoadHome(m.ctx, prog)
		close(prog)
		done <- homeLoadedMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	prog, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if prog == nil {
			return nil
		}
		if update, ok := <-prog; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) generate(term models.Term) tea.Cmd {
	return func() tea.Msg {
		s, err := m.deps.Collection.Generate(m.ctx, term)
		return generatedMsg(s, err)
	}
}

func (m *Model) loadPublic() tea.Cmd {
	return func() tea.Msg {
		snapshots, err := m.deps.Collection.Public(m.ctx)
		return publicLoadedMsg(snapshots, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case HomeView:
		body = m.renderHome()
	case DetailView:
		body = m.renderDetail()
	case GameView:
		body = m.renderGame()
	case PublicView:
		body = m.renderPublic()
	}

	if m.loading {
		status := m.progress.Message
		if status == "" {
			status = "Loading..."
		}
		body += fmt.Sprintf("\n\n%s %s", m.spinner.View(), m.styles.help.Render(status))
	}
	if m.alert != "" {
		body += "\n\n" + m.renderAlert()
	}
	return body
}

func (m *Model) renderAlert() string {
	switch {
	case strings.HasPrefix(m.alert, "✗"):
		return m.styles.err.Render(m.alert)
	case strings.HasPrefix(m.alert, "⚠"):
		return m.styles.warn.Render(m.alert)
	default:
		return m.styles.ok.Render(m.alert)
	}
}

func (m *Model) renderLogin() string {
	heading := "Log in to Spotify Wrapped"
	toggle := key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "create account"))
	if m.registering {
		heading = "Create an account"
		toggle = key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "back to login"))
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(heading))
	b.WriteString("\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	quit := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{submit, m.keys.tab, toggle, quit}))
	return b.String()
}

func (m *Model) renderHome() string {
	if m.home == nil || m.home.Profile == nil {
		return m.styles.title.Render("Spotify Wrapped")
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(fmt.Sprintf("Welcome, %s", m.home.Profile.Username)))
	b.WriteString("\n")
	if m.home.Linked() {
		b.WriteString(m.styles.ok.Render("✓ Spotify linked"))
	} else {
		b.WriteString(m.styles.warn.Render("⚠ Spotify not linked: run `wrapped spotify link` to generate"))
	}
	b.WriteString("\n\n")

	if len(m.home.Snapshots) == 0 {
		b.WriteString(m.styles.help.Render("No Wrapped yet. Press 1-5 to generate one."))
	} else {
		s := m.home.Snapshots[m.carousel]
		card := fmt.Sprintf("%s\n\n%s", m.styles.ok.Render(s.Title), s.CoverImageURL)
		if top, ok := s.TopArtist(); ok {
			card += fmt.Sprintf("\nTop artist: %s", top.Name)
		}
		if s.Public {
			card += "\n" + m.styles.help.Render("public")
		}
		b.WriteString(m.styles.card.Render(card))
		b.WriteString(fmt.Sprintf("\n  ‹ %d/%d ›", m.carousel+1, len(m.home.Snapshots)))
	}

	b.WriteString("\n\nGenerate: ")
	for i, term := range models.Terms() {
		b.WriteString(fmt.Sprintf(" %d %s ", i+1, term))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{
		m.keys.left, m.keys.right, m.keys.enter, m.keys.generate,
		m.keys.game, m.keys.public, m.keys.theme, m.keys.logout, m.keys.quit,
	}))
	return b.String()
}

func (m *Model) renderDetail() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.detail.Title))
	b.WriteString("\n")

	if len(m.detail.Artists) == 0 {
		b.WriteString(m.styles.help.Render("This Wrapped has no artists."))
	} else {
		a := m.detail.Artists[m.artist]
		card := fmt.Sprintf("#%d of %d\n%s", m.artist+1, len(m.detail.Artists), m.styles.ok.Render(a.Name))
		if a.TopSong != "" {
			card += fmt.Sprintf("\nMost listened to: %s", a.TopSong)
		}
		if len(a.Genres) > 0 {
			card += fmt.Sprintf("\nGenres: %s", strings.Join(a.Genres, ", "))
		}
		if a.Description != "" {
			card += "\n\n" + a.Description
		}
		if a.PreviewURL != "" {
			card += "\n\n" + m.styles.help.Render(a.PreviewURL)
		}
		b.WriteString(m.styles.card.Render(card))
		b.WriteString("\n\n")
		b.WriteString(m.artists.View())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{
		m.keys.left, m.keys.right, m.keys.open, m.keys.publish, m.keys.delete, m.keys.back, m.keys.quit,
	}))
	return b.String()
}

func (m *Model) renderGame() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Spotify Wrapped Trivia!"))
	b.WriteString("\n")

	if m.game == nil {
		return b.String()
	}

	if m.game.Over() {
		b.WriteString(m.styles.ok.Render("Game Over!"))
		b.WriteString(fmt.Sprintf("\n\nYour Score: %d / %d\n\n", m.game.Score(), m.game.Len()))
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.back, m.keys.quit}))
		return b.String()
	}

	q, _ := m.game.Current()
	b.WriteString(fmt.Sprintf("Question %d of %d\n\n", m.game.Index()+1, m.game.Len()))
	b.WriteString(m.styles.text.Render(q.Prompt))
	b.WriteString("\n\n")
	for i, opt := range q.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		if i == m.choice {
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	timer := fmt.Sprintf("Time: %ds", m.remaining)
	if m.remaining <= 3 {
		timer = m.styles.warn.Render(timer)
	}
	b.WriteString(fmt.Sprintf("\n%s    Score: %d\n\n", timer, m.game.Score()))

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit answer"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, submit, m.keys.back}))
	return b.String()
}

func (m *Model) renderPublic() string {
	if !m.hasPublic {
		return ""
	}
	return fmt.Sprintf("%s\n\n%s", m.public.View(), m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit}))
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func clamp(i, n int) int {
	if i < 0 || n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
