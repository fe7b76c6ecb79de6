package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/wrapped/internal/session"
)

var (
	darkPalette  = NewPalette("#1DB954", "#1ED760", "#FF5555", "#FFA500", "#8A8A8A", "#FFFFFF", "#191414")
	lightPalette = NewPalette("#117A37", "#1DB954", "#C0392B", "#B9770E", "#6B6B6B", "#191414", "#F5F5F5")
)

var _ Painter = (*Palette)(nil)

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	text     lipgloss.Style
	card     lipgloss.Style
	selected lipgloss.Style
}

func NewPalette(t, s, e, w, h, fg, bg string) *Palette {
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		text:     NewStyle(fg),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(1, 2),
		selected: NewBold(bg).Background(lipgloss.Color(t)).Padding(0, 1),
	}
}

// PaletteFor returns the stylesheet for theme.
func PaletteFor(theme session.Theme) *Palette {
	if theme == session.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// As renders s in the foreground color c.
func (p *Palette) As(s string, c lipgloss.Color) string {
	return p.text.Foreground(c).Render(s)
}

// On renders s over the background color c.
func (p *Palette) On(s string, c lipgloss.Color) string {
	return p.text.Background(c).Render(s)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
