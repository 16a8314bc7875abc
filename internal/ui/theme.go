package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/complaint-triage/internal/domain"
)

// Theme defines the color palette and shared styles for the dashboard.
type Theme struct {
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Notice    lipgloss.Style
	Panel     lipgloss.Style
	PanelHead lipgloss.Style
	StatusBar lipgloss.Style

	statusStyles  map[domain.Status]lipgloss.Style
	urgencyStyles map[domain.Urgency]lipgloss.Style
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
	Subtle:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("237")),
	Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	PanelHead: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
	StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 1),

	statusStyles: map[domain.Status]lipgloss.Style{
		domain.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		domain.StatusProcessing: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		domain.StatusReady:      lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		domain.StatusResolved:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		domain.StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	},
	urgencyStyles: map[domain.Urgency]lipgloss.Style{
		domain.UrgencyHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		domain.UrgencyMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		domain.UrgencyLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	},
}

// StatusBadge renders a colored status label.
func (t Theme) StatusBadge(status domain.Status) string {
	style, ok := t.statusStyles[status]
	if !ok {
		return string(status)
	}
	return style.Render(string(status))
}

// UrgencyBadge renders a colored urgency label.
func (t Theme) UrgencyBadge(urgency domain.Urgency) string {
	style, ok := t.urgencyStyles[urgency]
	if !ok {
		return string(urgency)
	}
	return style.Render(string(urgency))
}
