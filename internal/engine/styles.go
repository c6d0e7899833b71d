package engine

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

// Color palette
var (
	ColorSuccess = lipgloss.Color("#00D787") // Green
	ColorError   = lipgloss.Color("#FF5F87") // Pink
	ColorWarning = lipgloss.Color("#FFAF00") // Yellow
	ColorInfo    = lipgloss.Color("#5FAFFF") // Blue
	ColorMuted   = lipgloss.Color("#888888") // Mid gray
	ColorAccent  = lipgloss.Color("#AF87FF") // Purple
)

// Text styles
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleBold    = lipgloss.NewStyle().Bold(true)
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
)

// maxBoxWidth caps boxed output on wide terminals.
const maxBoxWidth = 78

// TerminalWidth returns the stdout width, or fallback when stdout is not a terminal.
func TerminalWidth(fallback int) int {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return fallback
	}
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// ScoreStyle colors a 1-10 quality score: green from 7, yellow from 5, pink below.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 7:
		return StyleSuccess
	case score >= 5:
		return StyleWarning
	default:
		return StyleError
	}
}

// BoxStyle creates a box style with the given border color and responsive width.
func BoxStyle(borderColor lipgloss.Color) lipgloss.Style {
	width := TerminalWidth(80) - 2
	if width > maxBoxWidth {
		width = maxBoxWidth
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width)
}

// HeaderBox returns the run banner style.
func HeaderBox() lipgloss.Style { return BoxStyle(ColorInfo) }

// SuccessBox returns the completion box style.
func SuccessBox() lipgloss.Style { return BoxStyle(ColorSuccess) }

// ErrorBox returns the failure box style.
func ErrorBox() lipgloss.Style { return BoxStyle(ColorError) }
