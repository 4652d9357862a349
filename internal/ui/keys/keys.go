// Package keys defines the key bindings shared by the board views.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the views match against.
type KeyMap struct {
	Quit          key.Binding
	Back          key.Binding
	Tab           key.Binding
	Up            key.Binding
	Down          key.Binding
	Left          key.Binding
	Right         key.Binding
	Enter         key.Binding
	Edit          key.Binding
	New           key.Binding
	NewSubtask    key.Binding
	Delete        key.Binding
	Toggle        key.Binding
	MoveUp        key.Binding
	MoveDown      key.Binding
	MoveLeft      key.Binding
	MoveRight     key.Binding
	Priority      key.Binding
	Search        key.Binding
	Filter        key.Binding
	Tags          key.Binding
	Account       key.Binding
	ShowCancelled key.Binding
	Help          key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "open"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		NewSubtask: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "new subtask"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("J", "move down"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "move to prev column"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "move to next column"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "bump priority"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter by tag"),
		),
		Tags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "manage tags"),
		),
		Account: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "account"),
		),
		ShowCancelled: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "show cancelled"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// BoardHelp lists the bindings shown in the board's help popup, in order.
func (k KeyMap) BoardHelp() []key.Binding {
	return []key.Binding{
		k.Enter, k.New, k.NewSubtask, k.Edit, k.Delete, k.Toggle,
		k.Left, k.Right, k.MoveLeft, k.MoveRight, k.MoveUp, k.MoveDown,
		k.Priority, k.Search, k.Filter, k.Tags, k.ShowCancelled, k.Account,
		k.Quit,
	}
}
