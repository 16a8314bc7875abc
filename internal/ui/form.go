package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spec-kit/complaint-triage/internal/domain"
)

const (
	formFieldTitle = iota
	formFieldDescription
	formFieldEmail
	formFieldName
	formFieldCount
)

// FormState is the new-complaint intake form.
type FormState struct {
	title       textinput.Model
	description textarea.Model
	email       textinput.Model
	name        textinput.Model

	focus      int
	submitting bool
	errMsg     string
}

// NewFormState creates an empty intake form with the title focused.
func NewFormState() FormState {
	title := textinput.New()
	title.Placeholder = "Brief summary of the complaint"

	description := textarea.New()
	description.Placeholder = "Describe the problem in detail (at least 10 characters)..."
	description.SetHeight(6)

	email := textinput.New()
	email.Placeholder = "customer@example.com"

	name := textinput.New()
	name.Placeholder = "Customer name (optional)"

	form := FormState{
		title:       title,
		description: description,
		email:       email,
		name:        name,
	}
	form.applyFocus()
	return form
}

func (f *FormState) input() domain.CreateInput {
	return domain.CreateInput{
		Title:         f.title.Value(),
		Description:   f.description.Value(),
		CustomerEmail: strings.TrimSpace(f.email.Value()),
		CustomerName:  f.name.Value(),
	}
}

func (f *FormState) cycleFocus() {
	f.focus = (f.focus + 1) % formFieldCount
	f.applyFocus()
}

func (f *FormState) applyFocus() {
	f.title.Blur()
	f.description.Blur()
	f.email.Blur()
	f.name.Blur()
	switch f.focus {
	case formFieldTitle:
		f.title.Focus()
	case formFieldDescription:
		f.description.Focus()
	case formFieldEmail:
		f.email.Focus()
	case formFieldName:
		f.name.Focus()
	}
}

func (f *FormState) resize(width int) {
	if width < 20 {
		width = 20
	}
	f.title.Width = width
	f.description.SetWidth(width)
	f.email.Width = width
	f.name.Width = width
}

func (m *Model) updateForm(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Back):
		m.form = NewFormState()
		m.formGeneration++
		m.view = ViewList
		m.collection.SetEnabled(m.list.autoRefresh)
		return m, nil

	case key.Matches(message, m.keys.NextField):
		m.form.cycleFocus()
		return m, nil

	case key.Matches(message, m.keys.Save):
		return m.submitForm()
	}

	var cmd tea.Cmd
	switch m.form.focus {
	case formFieldTitle:
		m.form.title, cmd = m.form.title.Update(message)
	case formFieldDescription:
		m.form.description, cmd = m.form.description.Update(message)
	case formFieldEmail:
		m.form.email, cmd = m.form.email.Update(message)
	case formFieldName:
		m.form.name, cmd = m.form.name.Update(message)
	}
	return m, cmd
}

// submitForm validates inline first; only clean input produces a
// create call.
func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	in := m.form.input()
	if err := domain.ValidateCreate(in); err != nil {
		m.form.errMsg = err.Error()
		return m, nil
	}
	m.form.errMsg = ""
	m.form.submitting = true
	return m, m.createCmd(in, m.formGeneration)
}

func (m *Model) viewForm() string {
	var b strings.Builder
	f := &m.form

	b.WriteString(m.theme.Title.Render("New Complaint"))
	b.WriteString("\n\n")

	b.WriteString(m.theme.PanelHead.Render("Title"))
	b.WriteString("\n")
	b.WriteString(f.title.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.PanelHead.Render("Description"))
	b.WriteString("\n")
	b.WriteString(f.description.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.PanelHead.Render("Customer Email"))
	b.WriteString("\n")
	b.WriteString(f.email.View())
	b.WriteString("\n\n")

	b.WriteString(m.theme.PanelHead.Render("Customer Name"))
	b.WriteString("\n")
	b.WriteString(f.name.View())
	b.WriteString("\n\n")

	if f.errMsg != "" {
		b.WriteString(m.theme.Error.Render(f.errMsg))
		b.WriteString("\n\n")
	}
	if f.submitting {
		b.WriteString(m.spin.View())
		b.WriteString(" Submitting...\n\n")
	}

	b.WriteString(m.theme.StatusBar.Render("Tab next field · C-d submit · Esc cancel"))
	return b.String()
}
