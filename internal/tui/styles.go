package tui

import "github.com/charmbracelet/lipgloss"

// Color palette - keeping it minimal and accessible.
var (
	ColorPrimary = lipgloss.Color("39")  // Blue
	ColorSuccess = lipgloss.Color("34")  // Green
	ColorError   = lipgloss.Color("196") // Red
	ColorMuted   = lipgloss.Color("240") // Dark gray
	ColorText    = lipgloss.Color("252")
)

var (
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	MessageStyle = lipgloss.NewStyle().Foreground(ColorText)
	CounterStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
)

const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
)
