package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings that work on every screen.
type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the global bindings. Quit only applies on the
// instruction list, where q is not text input.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
}
