package app

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Activate key.Binding
	Filter   key.Binding
	Copy     key.Binding
	ShowIDs  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Activate: key.NewBinding(key.WithKeys("enter", "space", " "), key.WithHelp("enter", "press/toggle")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		ShowIDs:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ids")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Activate, k.Filter, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Activate, k.Filter, k.Copy, k.ShowIDs},
		{k.Help, k.Quit},
	}
}

// helpMarkdown is the body of the help overlay.
func (k keyMap) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# hubview\n\n| Key | Action |\n|---|---|\n")
	for _, column := range k.FullHelp() {
		for _, binding := range column {
			help := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", help.Key, help.Desc)
		}
	}
	b.WriteString("\nRows show the entity icon, name and current state. " +
		"Enter presses buttons and toggles lights and switches. " +
		"While filtering, type to narrow the list and press esc to clear.\n")
	return b.String()
}
