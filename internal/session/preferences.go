package session

import (
	"fmt"

	"github.com/desertthunder/wrapped/internal/shared"
)

// Theme is the persisted palette preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: theme must be dark or light, got %q", shared.ErrInvalidArgument, s)
}

// Preferences reads and writes display preferences.
type Preferences struct {
	storage Storage
}

func NewPreferences(storage Storage) *Preferences {
	return &Preferences{storage: storage}
}

// Theme returns the stored theme. Only an explicit "dark" selects the dark theme.
func (p *Preferences) Theme() (Theme, error) {
	v, ok, err := p.storage.Get(ThemeKey)
	if err != nil {
		return ThemeLight, fmt.Errorf("failed to read theme: %w", err)
	}
	if ok && Theme(v) == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (p *Preferences) SetTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	if err := p.storage.Set(ThemeKey, string(t)); err != nil {
		return fmt.Errorf("failed to store theme: %w", err)
	}
	return nil
}

// ToggleTheme flips between dark and light and returns the new value.
func (p *Preferences) ToggleTheme() (Theme, error) {
	current, err := p.Theme()
	if err != nil {
		return current, err
	}

	next := ThemeLight
	if current == ThemeLight {
		next = ThemeDark
	}
	return next, p.SetTheme(next)
}
