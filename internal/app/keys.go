package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/idilsaglam/todoview/internal/router"
)

type keyMap struct {
	Refresh key.Binding
	Home    key.Binding
	Open    key.Binding
	Goto    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(key.WithKeys("r", "f5"), key.WithHelp("r", "refresh")),
		Home:    router.HomeAnchor,
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Goto:    key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "go to path")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// homeKeys is shown while the list is on screen.
type homeKeys keyMap

func (k homeKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Open, k.Goto, k.Quit}
}

func (k homeKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// pageKeys is shown on every other route.
type pageKeys keyMap

func (k pageKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Goto, k.Quit}
}

func (k pageKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }
