package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBrand   = lipgloss.Color("#25D366")
	colorDimGray = lipgloss.Color("#555555")
	colorRed     = lipgloss.Color("#FF6B6B")
	colorCyan    = lipgloss.Color("#88C0D0")
	colorWhite   = lipgloss.Color("#E6E6E6")
	colorSubtle  = lipgloss.Color("#888888")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	merchantStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	fallbackStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	inputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDimGray).
			Padding(0, 1)
)
