package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vidsum/vidsum/pkg/vidsum/types"
)

// ANSI 256-color palette shared by the pretty formatter and the TUI.
const (
	// ColorPrimary marks headers and size figures (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess marks fingerprinted-ok entries and counters (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning marks missing entries and interrupted scans (orange).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger marks hash failures and mismatches (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted marks labels and secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

// Box styles for the pretty formatter's framed sections.
var (
	// HeaderBox frames the scan metadata block.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox frames the file-count and total-size line.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

// Text styles.
var (
	// LabelStyle renders field labels such as "Source:" and "Mode:".
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// ValueStyle renders field values next to their labels.
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	// SuccessStyle renders counters for successful work.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// WarningStyle renders missing counts and interruption notices.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// ErrorStyle renders error counts and failed rows.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger)

	// MutedStyle renders hints and secondary information.
	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// PathStyle renders file paths.
	PathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	// SizeStyle renders file sizes.
	SizeStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// HashStyle renders content fingerprints.
	HashStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// TableHeaderStyle renders column headers in the file table.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorMuted).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorMuted).
				PaddingRight(2)
)

// StatusStyle returns the style for a catalog scan status. Unknown
// statuses render muted rather than failing.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case types.StatusOK:
		return SuccessStyle
	case types.StatusError:
		return ErrorStyle
	case types.StatusMissing:
		return WarningStyle
	default:
		return MutedStyle
	}
}
