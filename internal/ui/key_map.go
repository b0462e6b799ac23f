package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the migrate flow. Cursor movement and filtering stay with
// [list.Model].
type keyMap struct {
	preview key.Binding
	migrate key.Binding
	back    key.Binding
	confirm key.Binding
	cancel  key.Binding
	again   key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		preview: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview tracks")),
		migrate: key.NewBinding(key.WithKeys("enter", "m"), key.WithHelp("enter/m", "migrate")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start")),
		cancel:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		again:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "pick another playlist")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// bindings lists the keys shown under view. A running migration only listens for ctrl+c.
func (k keyMap) bindings(view ViewState) []key.Binding {
	switch view {
	case TrackListView:
		return []key.Binding{k.migrate, k.back, k.quit}
	case ConfirmView:
		return []key.Binding{k.confirm, k.cancel}
	case MigrateView:
		return nil
	case ResultView:
		return []key.Binding{k.again, k.back, k.quit}
	default:
		return []key.Binding{k.preview, k.quit}
	}
}
