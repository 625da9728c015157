package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Reload  key.Binding
	Like    key.Binding
	Filter  key.Binding
	Admin   key.Binding
	SignIn  key.Binding
	SignOut key.Binding
	Theme   key.Binding
	Escape  key.Binding
	Submit  key.Binding
	Tab     key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", " "),
			key.WithHelp("→", "next"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reshuffle"),
		),
		Like: key.NewBinding(
			key.WithKeys("enter", "x"),
			key.WithHelp("enter", "like"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Admin: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add excerpts"),
		),
		SignIn: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sign in"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sign out"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss/close"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
