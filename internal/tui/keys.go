package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Status   key.Binding
	Sessions key.Binding
	Week     key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Status, k.Sessions, k.Week, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Status:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "status")),
	Sessions: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "sessions")),
	Week:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "week")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
