package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the shell
var (
	colorRed    = lipgloss.Color("#FF0000")
	colorGreen  = lipgloss.Color("#00FF00")
	colorYellow = lipgloss.Color("#FFFF00")
	colorCyan   = lipgloss.Color("#00FFFF")
	colorGray   = lipgloss.Color("#666666")
	colorWhite  = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	recordingBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorRed)

	pausedBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorYellow)

	idleBadgeStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	stoppedBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorGreen)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	entryStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	footerKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)
