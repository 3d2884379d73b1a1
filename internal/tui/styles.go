package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorViolet = lipgloss.Color("#A78BFA")
	colorGray   = lipgloss.Color("#666666")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorViolet)

	userStyle = lipgloss.NewStyle().
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorViolet)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	eventStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorGray)
)
