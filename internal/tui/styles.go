package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorGreen = lipgloss.Color("2")
	colorRed   = lipgloss.Color("1")
	colorGray  = lipgloss.Color("8")
	colorWhite = lipgloss.Color("15")
	colorCyan  = lipgloss.Color("6")
)

// Layout styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingTop(1)

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	// Detail view styles.
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Width(11)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	// Row styles by process owner.
	userProcessStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	systemProcessStyle = lipgloss.NewStyle().Foreground(colorGray)
	rootProcessStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// processStyle returns the row style for a process owner. Unknown owners
// are dimmed along with system accounts.
func processStyle(user string) lipgloss.Style {
	switch user {
	case "root":
		return rootProcessStyle
	case "", "_postgres", "_mysql", "_www", "daemon", "nobody", "_windowserver",
		"_spotlight", "_mdnsresponder", "_netbios", "_locationd":
		return systemProcessStyle
	default:
		return userProcessStyle
	}
}
