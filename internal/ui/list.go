package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xeonx/timeago"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
)

// statusCycle is the filter rotation for the s key; empty means no
// filter.
var statusCycle = []domain.Status{
	"",
	domain.StatusPending,
	domain.StatusProcessing,
	domain.StatusReady,
	domain.StatusResolved,
	domain.StatusFailed,
}

// urgencyCycle is the filter rotation for the u key.
var urgencyCycle = []domain.Urgency{
	"",
	domain.UrgencyHigh,
	domain.UrgencyMedium,
	domain.UrgencyLow,
}

// ListState holds the dashboard list view: the last good list and
// stats snapshots, the active filters, and the cursor.
type ListState struct {
	tickets []domain.Ticket
	total   int
	stats   *client.StatsResponse

	cursor        int
	selectedID    string // Stable focus: track selection by ticket id.
	statusFilter  domain.Status
	urgencyFilter domain.Urgency
	autoRefresh   bool
	loading       bool
	errMsg        string
	notice        string
}

// NewListState creates the initial list state with auto-refresh on.
func NewListState() ListState {
	return ListState{autoRefresh: true, loading: true}
}

// setTickets replaces the list snapshot wholesale and re-anchors the
// cursor on the previously selected ticket when it survived the
// refresh.
func (l *ListState) setTickets(resp *client.ListResponse) {
	l.tickets = resp.Items
	l.total = resp.Total

	if l.selectedID != "" {
		for i := range l.tickets {
			if l.tickets[i].ID == l.selectedID {
				l.cursor = i
				return
			}
		}
	}
	if l.cursor >= len(l.tickets) {
		l.cursor = len(l.tickets) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.rememberSelection()
}

func (l *ListState) rememberSelection() {
	if l.cursor >= 0 && l.cursor < len(l.tickets) {
		l.selectedID = l.tickets[l.cursor].ID
	} else {
		l.selectedID = ""
	}
}

func (m *Model) updateList(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Up):
		if m.list.cursor > 0 {
			m.list.cursor--
		}
		m.list.rememberSelection()

	case key.Matches(message, m.keys.Down):
		if m.list.cursor < len(m.list.tickets)-1 {
			m.list.cursor++
		}
		m.list.rememberSelection()

	case key.Matches(message, m.keys.Open):
		if m.list.cursor < len(m.list.tickets) {
			m.openDetail(m.list.tickets[m.list.cursor].ID)
			return m, listenForTicketEvent(m.watcher.Events(), m.generation)
		}

	case key.Matches(message, m.keys.NewTicket):
		m.view = ViewForm
		m.form = NewFormState()
		m.form.resize(m.width - 8)
		m.collection.SetEnabled(false)
		return m, m.form.title.Focus()

	case key.Matches(message, m.keys.Refresh):
		m.list.notice = ""
		m.collection.Refresh()

	case key.Matches(message, m.keys.ToggleAuto):
		m.list.autoRefresh = !m.list.autoRefresh
		m.collection.SetEnabled(m.list.autoRefresh)

	case key.Matches(message, m.keys.CycleStatus):
		m.list.statusFilter = cycleStatus(m.list.statusFilter)
		m.collection.SetFilter(m.list.statusFilter, m.list.urgencyFilter)

	case key.Matches(message, m.keys.CycleUrgency):
		m.list.urgencyFilter = cycleUrgency(m.list.urgencyFilter)
		m.collection.SetFilter(m.list.statusFilter, m.list.urgencyFilter)

	case key.Matches(message, m.keys.ClearFilters):
		if m.list.statusFilter != "" || m.list.urgencyFilter != "" {
			m.list.statusFilter = ""
			m.list.urgencyFilter = ""
			m.collection.SetFilter("", "")
		}
	}
	return m, nil
}

func cycleStatus(current domain.Status) domain.Status {
	for i, status := range statusCycle {
		if status == current {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return ""
}

func cycleUrgency(current domain.Urgency) domain.Urgency {
	for i, urgency := range urgencyCycle {
		if urgency == current {
			return urgencyCycle[(i+1)%len(urgencyCycle)]
		}
	}
	return ""
}

func (m *Model) viewList() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("Agent Dashboard"))
	b.WriteString("  ")
	b.WriteString(m.theme.Subtle.Render("customer complaints"))
	b.WriteString("\n\n")

	if m.list.stats != nil {
		b.WriteString(m.renderStats(m.list.stats))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if m.list.notice != "" {
		b.WriteString(m.theme.Success.Render(m.list.notice))
		b.WriteString("\n\n")
	}
	if m.list.errMsg != "" {
		b.WriteString(m.theme.Error.Render(m.list.errMsg))
		b.WriteString("\n\n")
	}

	if m.list.loading {
		b.WriteString(m.spin.View())
		b.WriteString(" Loading tickets...\n")
	} else if len(m.list.tickets) == 0 {
		b.WriteString(m.theme.Subtle.Render("No tickets match the current filters."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	b.WriteString(m.theme.StatusBar.Render(
		"j/k move · Enter open · n new · s/u filter · c clear · a auto-refresh · r refresh · q quit"))
	return b.String()
}

func (m *Model) renderStats(stats *client.StatsResponse) string {
	cells := []string{
		fmt.Sprintf("Total %d", stats.Total),
		fmt.Sprintf("Pending %d", stats.ByStatus.Pending),
		fmt.Sprintf("Processing %d", stats.ByStatus.Processing),
		fmt.Sprintf("Ready %d", stats.ByStatus.Ready),
		fmt.Sprintf("Resolved %d", stats.ByStatus.Resolved),
		fmt.Sprintf("Failed %d", stats.ByStatus.Failed),
	}
	styled := make([]string, len(cells))
	for i, cell := range cells {
		styled[i] = m.theme.Panel.Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, styled...)
}

func (m *Model) renderFilters() string {
	status := "all"
	if m.list.statusFilter != "" {
		status = string(m.list.statusFilter)
	}
	urgency := "all"
	if m.list.urgencyFilter != "" {
		urgency = string(m.list.urgencyFilter)
	}
	auto := "on"
	if !m.list.autoRefresh {
		auto = "off"
	}
	return m.theme.Subtle.Render(fmt.Sprintf(
		"status: %s · urgency: %s · auto-refresh: %s · %d tickets", status, urgency, auto, m.list.total))
}

func (m *Model) renderTable() string {
	var b strings.Builder

	titleWidth := m.width - 48
	if titleWidth < 20 {
		titleWidth = 20
	}

	header := fmt.Sprintf("  %-*s %-11s %-7s %-16s %s", titleWidth, "TITLE", "STATUS", "URGENCY", "CATEGORY", "CREATED")
	b.WriteString(m.theme.PanelHead.Render(header))
	b.WriteString("\n")

	for i := range m.list.tickets {
		ticket := &m.list.tickets[i]

		urgency := "-"
		if ticket.Urgency != nil {
			urgency = string(*ticket.Urgency)
		}
		category := "-"
		if ticket.Category != nil {
			category = string(*ticket.Category)
		}

		row := fmt.Sprintf("%-*s %-11s %-7s %-16s %s",
			titleWidth, truncate(ticket.Title, titleWidth),
			ticket.Status, urgency, category,
			timeago.English.Format(ticket.CreatedAt))

		if i == m.list.cursor {
			b.WriteString(m.theme.Selected.Render("> " + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens a string to width characters. Cutting on runes,
// not bytes, so a multibyte title never renders a torn character.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
