package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	usernameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	priorityHighStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	priorityMediumStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	severityCriticalStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	severityWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	severityInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	giftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))
)
