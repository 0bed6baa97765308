package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Request    key.Binding
	Permission key.Binding
	Continue   key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	Help       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Request: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "request permission"),
		),
		Permission: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "permission"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view reminders"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
