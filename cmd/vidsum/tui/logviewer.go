package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vidsum/vidsum/pkg/vidsum/logging"
)

// LogViewerState holds the state for the log viewer pane.
type LogViewerState struct {
	Open         bool
	Buffer       *logging.Buffer
	FilterLevel  logging.Level
	ScrollOffset int
}

// NewLogViewerState creates a new log viewer state backed by the given
// buffer. A nil buffer gets an empty one so the viewer stays usable
// when buffered logging is off.
func NewLogViewerState(buf *logging.Buffer) *LogViewerState {
	if buf == nil {
		buf = logging.NewBuffer(logging.DefaultBufferSize)
	}
	return &LogViewerState{Buffer: buf, FilterLevel: logging.LevelDebug}
}

// Toggle opens or closes the log viewer.
func (s *LogViewerState) Toggle() { s.Open = !s.Open }

// SetFilterLevel changes the minimum level shown and rewinds to the top.
func (s *LogViewerState) SetFilterLevel(level logging.Level) {
	s.FilterLevel = level
	s.ScrollOffset = 0
}

// ScrollUp moves the viewport up one line.
func (s *LogViewerState) ScrollUp() {
	if s.ScrollOffset > 0 {
		s.ScrollOffset--
	}
}

// ScrollDown moves the viewport down one line, stopping once the last
// filtered entry is on screen.
func (s *LogViewerState) ScrollDown(visibleRows int) {
	if s.ScrollOffset < max(s.FilteredEntryCount()-visibleRows, 0) {
		s.ScrollOffset++
	}
}

// FilteredEntryCount returns the number of entries at or above the
// current filter level.
func (s *LogViewerState) FilteredEntryCount() int {
	return len(filterEntriesByLevel(s.Buffer.Entries(), s.FilterLevel))
}

// renderLogViewer renders the log viewer pane: a title bar, a divider,
// and height-2 rows of entries with an optional scroll indicator.
func renderLogViewer(entries []logging.Entry, filterLevel logging.Level, scrollOffset, width, height int) string {
	if height < 3 {
		return ""
	}

	head := logTitleStyle.Render(fmt.Sprintf(" Logs [%s] ", filterLevel)) +
		mutedTextStyle.Render("[1-4] filter  [Esc] close")
	lines := []string{head, renderDivider(width)}

	visibleRows := max(height-2, 1)
	filtered := filterEntriesByLevel(entries, filterLevel)
	scrollOffset = clampLogScroll(scrollOffset, len(filtered), visibleRows)

	visible := getVisibleLogEntries(entries, filterLevel, scrollOffset, visibleRows)
	for _, entry := range visible {
		lines = append(lines, renderLogEntry(entry, width))
	}
	for i := len(visible); i < visibleRows; i++ {
		lines = append(lines, "")
	}

	out := strings.Join(lines, "\n") + "\n"
	if len(filtered) > visibleRows {
		pct := scrollOffset * 100 / (len(filtered) - visibleRows)
		indicator := mutedTextStyle.Render(fmt.Sprintf(" [%d/%d] %d%%", scrollOffset+1, len(filtered), pct))
		if gap := width - lipgloss.Width(indicator); gap > 0 {
			out += strings.Repeat(" ", gap)
		}
		out += indicator
	}
	return out
}

// renderLogEntry renders one entry as "HH:MM:SS [L] component: message",
// truncating the component to 10 chars and the message to what fits.
func renderLogEntry(entry logging.Entry, width int) string {
	comp := entry.Component
	if len(comp) > 10 {
		comp = comp[:10]
	}

	// Prefix is time(8), badge(3), component, plus separating spaces
	// and the colon.
	msgWidth := max(width-15-len(comp), 10)
	msg := entry.Message
	if len(msg) > msgWidth {
		msg = msg[:msgWidth-3] + "..."
	}

	return fmt.Sprintf("%s %s %s: %s",
		logTimeStyle.Render(entry.Time.Format("15:04:05")),
		logLevelStyle(entry.Level).Render("["+logLevelChar(entry.Level)+"]"),
		logComponentStyle.Render(comp),
		msg)
}

// filterEntriesByLevel returns entries at or above the given level.
func filterEntriesByLevel(entries []logging.Entry, minLevel logging.Level) []logging.Entry {
	return slices.DeleteFunc(slices.Clone(entries), func(e logging.Entry) bool {
		return e.Level < minLevel
	})
}

// clampLogScroll bounds the scroll offset to [0, total-visible].
func clampLogScroll(offset, totalEntries, visibleRows int) int {
	return min(max(offset, 0), max(totalEntries-visibleRows, 0))
}

// getVisibleLogEntries filters by level and windows the result by
// offset and limit.
func getVisibleLogEntries(entries []logging.Entry, minLevel logging.Level, offset, limit int) []logging.Entry {
	filtered := filterEntriesByLevel(entries, minLevel)
	if offset >= len(filtered) {
		return nil
	}
	return filtered[offset:min(offset+limit, len(filtered))]
}

// logBadges maps each level to its marker character and colour,
// indexed the same way as the level constants.
var logBadges = [...]struct {
	char  string
	style lipgloss.Style
}{
	logging.LevelDebug: {"D", lipgloss.NewStyle().Foreground(mutedColor)},
	logging.LevelInfo:  {"I", lipgloss.NewStyle().Foreground(accentColor)},
	logging.LevelWarn:  {"W", lipgloss.NewStyle().Foreground(warningColor)},
	logging.LevelError: {"E", lipgloss.NewStyle().Foreground(dangerColor)},
}

// logLevelChar returns the single-character marker for a level.
func logLevelChar(level logging.Level) string {
	if level < 0 || int(level) >= len(logBadges) {
		return "?"
	}
	return logBadges[level].char
}

// logLevelStyle returns the badge style for a level.
func logLevelStyle(level logging.Level) lipgloss.Style {
	if level < 0 || int(level) >= len(logBadges) {
		return logBadges[logging.LevelInfo].style
	}
	return logBadges[level].style
}

var (
	logTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	logTimeStyle      = lipgloss.NewStyle().Foreground(subtleColor)
	logComponentStyle = lipgloss.NewStyle().Foreground(primaryColor)
)
