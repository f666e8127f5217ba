// Package keys defines the keybindings shared across views.
package keys

import "github.com/charmbracelet/bubbles/key"

// CommonKeyMap holds bindings active in every view.
type CommonKeyMap struct {
	Quit   key.Binding
	Escape key.Binding
	Submit key.Binding
}

// Common is the application-wide keymap. Letter keys stay free for the
// command input, so quit lives on ctrl+c and esc.
var Common = CommonKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "quit"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send command"),
	),
}
