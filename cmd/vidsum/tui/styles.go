// Package tui implements the interactive terminal interface shown
// during library scans. It is built on Charmbracelet's Bubble Tea,
// with Lip Gloss styling and Bubbles components.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// The TUI shares the ANSI-256 palette used by the output package.
var (
	primaryColor = lipgloss.Color("39")  // titles, cursor, key hints
	accentColor  = lipgloss.Color("45")  // info-level log lines
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	dangerColor  = lipgloss.Color("196")

	mutedColor     = lipgloss.Color("245")
	subtleColor    = lipgloss.Color("240") // timestamps, empty progress cells
	borderColor    = lipgloss.Color("238")
	highlightColor = lipgloss.Color("236") // selection background
)

// Text styles shared across views.
var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	mutedTextStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorTextStyle   = lipgloss.NewStyle().Foreground(dangerColor)
	successTextStyle = lipgloss.NewStyle().Foreground(successColor)
	warningTextStyle = lipgloss.NewStyle().Foreground(warningColor)
	dividerStyle     = lipgloss.NewStyle().Foreground(borderColor)
)

// outerBoxStyle frames every view.
var outerBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(primaryColor).
	Padding(0, 1)

// Scanning view: progress bars and the stats box.
var (
	progressFillStyle  = lipgloss.NewStyle().Foreground(successColor)
	progressEmptyStyle = lipgloss.NewStyle().Foreground(subtleColor)

	statsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Padding(0, 2)
	statsLabelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	statsValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
)

// Results view: the error list and key hints.
var (
	cursorStyle       = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Background(highlightColor).
				Foreground(lipgloss.Color("15"))
	normalItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	// detailStyle indents the error message under the cursor row.
	detailStyle = lipgloss.NewStyle().Foreground(mutedColor).PaddingLeft(6)

	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	keyDescStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// renderDivider draws a horizontal rule spanning width cells.
func renderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return dividerStyle.Render(strings.Repeat("─", width))
}

// truncatePath shortens path to at most maxLen bytes, keeping the tail.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return path[:maxLen]
	}
	return ellipsis + path[len(path)-maxLen+len(ellipsis):]
}

// padLeft right-aligns s in a field of the given width.
func padLeft(s string, width int) string {
	if gap := width - len(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// padRight left-aligns s in a field of the given width.
func padRight(s string, width int) string {
	if gap := width - len(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// center pads s on both sides to fill the given width.
func center(s string, width int) string {
	gap := width - len(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}
