// Package report renders quiz and usage summaries for the terminal.
package report

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // purple
	Secondary = lipgloss.Color("#14B8A6") // teal
	Warning   = lipgloss.Color("#F97316") // orange
	Success   = lipgloss.Color("#22C55E") // green
	Error     = lipgloss.Color("#F43F5E") // rose
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(Text)

	dimStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	passStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)
)
