package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	left     key.Binding
	right    key.Binding
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	tab      key.Binding
	back     key.Binding
	generate key.Binding
	game     key.Binding
	public   key.Binding
	theme    key.Binding
	publish  key.Binding
	delete   key.Binding
	open     key.Binding
	restart  key.Binding
	logout   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		generate: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "generate")),
		game:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "trivia")),
		public:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "public")),
		theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		publish:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "publish")),
		delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open preview")),
		restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.up, k.down, k.enter},
		{k.generate, k.game, k.public, k.theme, k.logout},
		{k.publish, k.delete, k.open, k.back},
		{k.restart, k.quit},
	}
}
