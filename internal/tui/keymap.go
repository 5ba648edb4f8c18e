// internal/tui/keymap.go
package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the playground's key bindings.
type KeyMap struct {
	NextField key.Binding
	PrevOp    key.Binding
	NextOp    key.Binding
	Execute   key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch field"),
		),
		PrevOp: key.NewBinding(
			key.WithKeys("left", "shift+tab"),
			key.WithHelp("←", "previous operation"),
		),
		NextOp: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next operation"),
		),
		Execute: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "execute"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
