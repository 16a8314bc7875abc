package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spec-kit/complaint-triage/internal/client"
	"github.com/spec-kit/complaint-triage/internal/domain"
	"github.com/spec-kit/complaint-triage/pkg/apierror"
)

type detailMode int

const (
	// detailModeView renders the canonical snapshot read-only.
	detailModeView detailMode = iota
	// detailModeEdit edits the draft response and notes locally.
	detailModeEdit
	// detailModeResolve adds the agent name input for finalization.
	detailModeResolve
)

const (
	focusResponse = iota
	focusNotes
	focusAgentName
)

// DetailState holds the single-ticket view. ticket is the canonical
// snapshot owned by watcher events and mutation responses; the
// response/notes buffers are a local draft projection that is never
// merged back into it; only a confirmed server response replaces the
// canonical copy.
type DetailState struct {
	id           string
	ticket       *domain.Ticket
	invariantErr error

	loading     bool
	errMsg      string
	notice      string
	autoRefresh bool
	saving      bool

	mode      detailMode
	focus     int
	response  textarea.Model
	notes     textarea.Model
	agentName textinput.Model
}

// NewDetailState creates the state for one ticket id, loading until
// the watcher's first event arrives.
func NewDetailState(id string) DetailState {
	response := textarea.New()
	response.Placeholder = "Final response to the customer..."
	response.SetHeight(8)

	notes := textarea.New()
	notes.Placeholder = "Add internal notes about this ticket..."
	notes.SetHeight(4)

	agentName := textinput.New()
	agentName.Placeholder = "Agent name"

	return DetailState{
		id:          id,
		loading:     true,
		autoRefresh: true,
		response:    response,
		notes:       notes,
		agentName:   agentName,
	}
}

// setCanonical replaces the canonical snapshot and re-checks the
// backend's invariants; a violation is surfaced and disables
// state-dependent actions rather than crashing the view.
func (d *DetailState) setCanonical(ticket *domain.Ticket) {
	d.ticket = ticket
	d.invariantErr = ticket.CheckInvariants()
}

// canEditDraft gates the edit affordance on the state machine.
func (d *DetailState) canEditDraft() bool {
	return d.ticket != nil && domain.Capabilities(d.ticket.Status).CanEditDraft
}

// canResolve additionally requires a trustworthy snapshot: a ticket
// claiming ready without a draft violates the backend's contract and
// gets no resolve action.
func (d *DetailState) canResolve() bool {
	return d.ticket != nil &&
		domain.Capabilities(d.ticket.Status).CanResolve &&
		d.invariantErr == nil
}

// beginEdit seeds the draft buffers from the canonical snapshot: the
// saved final response when present, otherwise the AI draft.
func (d *DetailState) beginEdit(mode detailMode) {
	d.mode = mode
	d.notice = ""
	d.errMsg = ""

	d.response.SetValue(firstNonNil(d.ticket.FinalResponse, d.ticket.AIDraftResponse))
	d.notes.SetValue(deref(d.ticket.AgentNotes))
	d.agentName.SetValue("")

	d.focus = focusResponse
	d.applyFocus()
}

// cancelEdit discards the draft buffers.
func (d *DetailState) cancelEdit() {
	d.mode = detailModeView
	d.blurAll()
}

func (d *DetailState) cycleFocus() {
	fields := 2
	if d.mode == detailModeResolve {
		fields = 3
	}
	d.focus = (d.focus + 1) % fields
	d.applyFocus()
}

func (d *DetailState) applyFocus() {
	d.blurAll()
	switch d.focus {
	case focusResponse:
		d.response.Focus()
	case focusNotes:
		d.notes.Focus()
	case focusAgentName:
		d.agentName.Focus()
	}
}

func (d *DetailState) blurAll() {
	d.response.Blur()
	d.notes.Blur()
	d.agentName.Blur()
}

func (d *DetailState) resize(width int) {
	d.response.SetWidth(width)
	d.notes.SetWidth(width)
	d.agentName.Width = width
}

func (m *Model) updateDetail(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.closeDetail()

	case key.Matches(message, m.keys.Refresh):
		if m.watcher != nil {
			m.detail.notice = ""
			m.watcher.Refresh()
		}

	case key.Matches(message, m.keys.ToggleAuto):
		m.detail.autoRefresh = !m.detail.autoRefresh
		if m.watcher != nil {
			m.watcher.SetEnabled(m.detail.autoRefresh)
		}

	case key.Matches(message, m.keys.EditDraft):
		if m.detail.canEditDraft() {
			m.detail.beginEdit(detailModeEdit)
			return m, textarea.Blink
		}

	case key.Matches(message, m.keys.Resolve):
		if m.detail.canResolve() {
			m.detail.beginEdit(detailModeResolve)
			return m, textarea.Blink
		}
	}
	return m, nil
}

// updateDetailEditing routes keys while the draft buffers are active.
// Escape cancels, tab cycles fields, ctrl+d submits; everything else
// goes to the focused input.
func (m *Model) updateDetailEditing(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.detail.cancelEdit()
		return m, nil

	case key.Matches(message, m.keys.NextField):
		m.detail.cycleFocus()
		return m, nil

	case key.Matches(message, m.keys.Save):
		return m.submitDetail()
	}

	var cmd tea.Cmd
	switch m.detail.focus {
	case focusResponse:
		m.detail.response, cmd = m.detail.response.Update(message)
	case focusNotes:
		m.detail.notes, cmd = m.detail.notes.Update(message)
	case focusAgentName:
		m.detail.agentName, cmd = m.detail.agentName.Update(message)
	}
	return m, cmd
}

// submitDetail dispatches the active edit. Resolve inputs are
// validated locally first so bad input never produces a network call.
func (m *Model) submitDetail() (tea.Model, tea.Cmd) {
	if m.detail.saving {
		return m, nil
	}

	switch m.detail.mode {
	case detailModeEdit:
		response := m.detail.response.Value()
		notes := m.detail.notes.Value()
		req := client.UpdateTicketRequest{
			FinalResponse: &response,
			AgentNotes:    &notes,
		}
		m.detail.saving = true
		return m, m.saveDraftCmd(m.detail.id, req, m.generation)

	case detailModeResolve:
		in := domain.ResolveInput{
			FinalResponse: m.detail.response.Value(),
			AgentNotes:    m.detail.notes.Value(),
			ResolvedBy:    m.detail.agentName.Value(),
		}
		if err := domain.ValidateResolve(in); err != nil {
			m.detail.errMsg = apierror.Message(apierror.NewValidation(err.Error()))
			return m, nil
		}
		m.detail.saving = true
		return m, m.resolveCmd(m.detail.id, in, m.generation)
	}
	return m, nil
}

func (m *Model) viewDetail() string {
	var b strings.Builder
	d := &m.detail

	if d.loading {
		b.WriteString(m.spin.View())
		b.WriteString(" Loading ticket...\n")
		return b.String()
	}
	if d.ticket == nil {
		b.WriteString(m.theme.Error.Render(orDefault(d.errMsg, "Ticket not found")))
		b.WriteString("\n\n")
		b.WriteString(m.theme.StatusBar.Render("Esc back · r retry"))
		return b.String()
	}

	ticket := d.ticket

	b.WriteString(m.theme.Title.Render(ticket.Title))
	b.WriteString("\n")
	b.WriteString(m.renderBadges(ticket))
	b.WriteString("\n\n")

	if domain.PollingEligible(ticket.Status) && d.autoRefresh {
		b.WriteString(m.spin.View())
		b.WriteString(m.theme.Notice.Render(" Auto-refreshing... ticket is being processed by AI"))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderCustomer(ticket))
	b.WriteString("\n")

	b.WriteString(m.theme.Panel.Render(
		m.theme.PanelHead.Render("Complaint") + "\n" + ticket.Description))
	b.WriteString("\n")

	b.WriteString(m.renderResponseSection(ticket))

	if ticket.Status == domain.StatusResolved {
		b.WriteString(m.renderResolved(ticket))
	}
	if ticket.Status == domain.StatusFailed && ticket.ErrorMessage != nil {
		b.WriteString(m.theme.Panel.Render(
			m.theme.Error.Render("Processing failed") +
				fmt.Sprintf("\nAttempts: %d\nError: %s", ticket.ProcessingAttempts, *ticket.ErrorMessage)))
		b.WriteString("\n")
	}

	if d.invariantErr != nil {
		b.WriteString(m.theme.Error.Render("Inconsistent ticket state: " + d.invariantErr.Error()))
		b.WriteString("\n")
	}
	if d.notice != "" {
		b.WriteString(m.theme.Success.Render(d.notice))
		b.WriteString("\n")
	}
	if d.errMsg != "" {
		b.WriteString(m.theme.Error.Render(d.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.StatusBar.Render(m.detailHelp()))
	return b.String()
}

func (m *Model) detailHelp() string {
	d := &m.detail
	if d.saving {
		return "working..."
	}
	switch d.mode {
	case detailModeEdit:
		return "Tab next field · C-d save · Esc cancel"
	case detailModeResolve:
		return "Tab next field · C-d resolve · Esc cancel"
	}
	help := "Esc back · r refresh · a auto-refresh"
	if d.canEditDraft() {
		help += " · e edit draft"
	}
	if d.canResolve() {
		help += " · R resolve"
	}
	return help
}

func (m *Model) renderBadges(ticket *domain.Ticket) string {
	parts := []string{m.theme.StatusBadge(ticket.Status)}
	if ticket.Urgency != nil {
		parts = append(parts, m.theme.UrgencyBadge(*ticket.Urgency))
	}
	if ticket.Category != nil {
		parts = append(parts, m.theme.Subtle.Render(string(*ticket.Category)))
	}
	if ticket.SentimentScore != nil {
		parts = append(parts, m.theme.Subtle.Render(fmt.Sprintf("sentiment %d/10", *ticket.SentimentScore)))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderCustomer(ticket *domain.Ticket) string {
	lines := []string{
		m.theme.PanelHead.Render("Customer"),
		"Email: " + ticket.CustomerEmail,
	}
	if ticket.CustomerName != nil {
		lines = append(lines, "Name:  "+*ticket.CustomerName)
	}
	lines = append(lines,
		"Created: "+ticket.CreatedAt.Local().Format("Jan 2, 2006 15:04:05"),
		"Updated: "+ticket.UpdatedAt.Local().Format("Jan 2, 2006 15:04:05"))
	return m.theme.Panel.Render(strings.Join(lines, "\n")) + "\n"
}

func (m *Model) renderResponseSection(ticket *domain.Ticket) string {
	d := &m.detail
	var b strings.Builder

	if d.mode != detailModeView {
		b.WriteString(m.theme.PanelHead.Render("Edit Response"))
		b.WriteString("\n")
		b.WriteString(d.response.View())
		b.WriteString("\n")
		b.WriteString(m.theme.PanelHead.Render("Agent Notes"))
		b.WriteString("\n")
		b.WriteString(d.notes.View())
		b.WriteString("\n")
		if d.mode == detailModeResolve {
			b.WriteString(m.theme.PanelHead.Render("Your Name"))
			b.WriteString("\n")
			b.WriteString(d.agentName.View())
			b.WriteString("\n")
		}
		return b.String()
	}

	if ticket.AIDraftResponse != nil || ticket.FinalResponse != nil {
		body := firstNonNil(ticket.FinalResponse, ticket.AIDraftResponse)
		head := "AI Draft Response"
		if ticket.FinalResponse != nil {
			head = "Response"
		}
		b.WriteString(m.theme.Panel.Render(m.theme.PanelHead.Render(head) + "\n" + body))
		b.WriteString("\n")
	}
	if ticket.AgentNotes != nil && *ticket.AgentNotes != "" {
		b.WriteString(m.theme.Panel.Render(m.theme.PanelHead.Render("Agent Notes") + "\n" + *ticket.AgentNotes))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderResolved(ticket *domain.Ticket) string {
	lines := []string{
		m.theme.Success.Render("Ticket resolved"),
		"Resolved by: " + deref(ticket.ResolvedBy),
	}
	if ticket.ResolvedAt != nil {
		lines = append(lines, "Resolved at: "+ticket.ResolvedAt.Local().Format("Jan 2, 2006 15:04:05"))
	}
	return m.theme.Panel.Render(strings.Join(lines, "\n")) + "\n"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonNil(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return ""
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
