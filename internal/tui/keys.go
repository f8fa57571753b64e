package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the bindings for both panes.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Add      key.Binding
	Remove   key.Binding
	Upload   key.Binding
	Reload   key.Binding
	Focus    key.Binding
	Quit     key.Binding
	Send     key.Binding
	Back     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select:   key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "select")),
	Add:      key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new topic")),
	Remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
	Upload:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Quit:     key.NewBinding(key.WithKeys("q", keyCtrlC), key.WithHelp("q", "quit")),
	Send:     key.NewBinding(key.WithKeys(keyEnter), key.WithHelp("enter", "send")),
	Back:     key.NewBinding(key.WithKeys("esc", "tab"), key.WithHelp("esc", "topics")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
}

// topicHelp lists the bindings shown while the topic pane has focus.
func (k keyMap) topicHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Add, k.Remove, k.Upload, k.Reload, k.Focus, k.Quit}
}

// chatHelp lists the bindings shown while the chat pane has focus.
func (k keyMap) chatHelp() []key.Binding {
	return []key.Binding{k.Send, k.Back, k.PageUp, k.PageDown}
}

// renderHelp joins bindings into a single help line.
func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}
