package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Speak    key.Binding
	Stop     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Increase key.Binding
	Decrease key.Binding
	Up       key.Binding
	Down     key.Binding
	Filter   key.Binding
	Choose   key.Binding
	Cancel   key.Binding
	Paste    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Speak: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "speak"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc", "ctrl+x"),
			key.WithHelp("esc", "stop"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Increase: key.NewBinding(
			key.WithKeys("right", "l", "+", "="),
			key.WithHelp("→", "increase"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←", "decrease"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "previous voice"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "next voice"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find voice"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "choose"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "paste"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Speak, k.Stop, k.Next, k.Paste, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Speak, k.Stop, k.Paste},
		{k.Next, k.Prev, k.Increase, k.Decrease},
		{k.Up, k.Down, k.Filter, k.Choose},
		{k.Help, k.Quit},
	}
}
