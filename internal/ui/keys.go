package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding

	Open key.Binding // Open the selected ticket.
	Back key.Binding // Return to the list.

	NewTicket    key.Binding
	Refresh      key.Binding
	ToggleAuto   key.Binding
	CycleStatus  key.Binding
	CycleUrgency key.Binding
	ClearFilters key.Binding

	EditDraft key.Binding
	Resolve   key.Binding
	Save      key.Binding // Submit the active edit/form (ctrl+d).
	NextField key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in binding set. Vim-style navigation
// alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	NewTicket: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new complaint"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	ToggleAuto: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "auto-refresh"),
	),
	CycleStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status filter"),
	),
	CycleUrgency: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "urgency filter"),
	),
	ClearFilters: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear filters"),
	),
	EditDraft: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit draft"),
	),
	Resolve: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "resolve"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "submit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next field"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
