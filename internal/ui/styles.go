package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines the styling for the watch-mode chrome
var (
	// TitleStyle is used for the title bar
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#76d7a1"))

	// StatusStyle is used for the update/spinner line
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// HelpStyle is used for the key hints
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Faint(true)

	// ErrorStyle is used for refresh failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)
