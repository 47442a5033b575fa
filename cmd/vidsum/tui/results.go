package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vidsum/vidsum/pkg/vidsum/report"
	"github.com/vidsum/vidsum/pkg/vidsum/scan"
)

// ResultModel represents the results phase of the TUI: the report
// summary and a scrollable list of per-path errors.
type ResultModel struct {
	report *scan.Report
	errors []report.ScanError
	cursor int
	offset int // scroll offset
	width  int
	height int
}

// NewResultModel creates a new result model from a finished scan report.
func NewResultModel(rep *scan.Report) ResultModel {
	m := ResultModel{report: rep, width: 80, height: 24}
	if rep != nil {
		m.errors = rep.Errors
	}
	return m
}

// HandleKey handles key input for the result model.
func (m *ResultModel) HandleKey(key string) tea.Cmd {
	if len(m.errors) == 0 {
		return nil
	}

	switch key {
	case "up", "k":
		m.moveCursor(m.cursor - 1)
	case "down", "j":
		m.moveCursor(m.cursor + 1)
	case "home", "g":
		m.cursor, m.offset = 0, 0
	case "end", "G":
		m.moveCursor(len(m.errors) - 1)
	case "pgup":
		m.moveCursor(m.cursor - m.visibleRows())
	case "pgdown":
		m.moveCursor(m.cursor + m.visibleRows())
	}
	return nil
}

// moveCursor clamps the cursor into range and keeps it on screen.
func (m *ResultModel) moveCursor(to int) {
	m.cursor = min(max(to, 0), len(m.errors)-1)
	m.ensureVisible()
}

// ensureVisible drags the offset along so the cursor stays on screen.
func (m *ResultModel) ensureVisible() {
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// View renders the result model.
func (m ResultModel) View() string {
	contentWidth := max(m.width-4, 60)

	sections := []string{
		renderAppHeader(m.report.Found, m.report.Mode, m.report.Interrupted),
		renderDivider(contentWidth),
	}
	if metrics := renderScanMetrics(m.report.New, m.report.Updated, m.report.Elapsed); metrics != "" {
		sections = append(sections, metrics)
	}
	sections = append(sections, "")
	sections = append(sections, m.summaryRows()...)
	sections = append(sections, "", renderDivider(contentWidth))
	sections = append(sections, m.errorListLines(contentWidth)...)
	sections = append(sections, renderDivider(contentWidth), m.renderFooter())

	return outerBoxStyle.Width(m.width - 2).Render(strings.Join(sections, "\n"))
}

// summaryRows formats the report counters, one per line. Counters that
// are zero in a routine scan stay hidden.
func (m ResultModel) summaryRows() []string {
	rep := m.report

	type row struct {
		label string
		value string
		style lipgloss.Style
	}
	var rows []row
	add := func(label string, n int, style lipgloss.Style) {
		rows = append(rows, row{label, humanize.Comma(int64(n)), style})
	}

	add("Found", rep.Found, statsValueStyle)
	add("New", rep.New, successTextStyle)
	add("Updated", rep.Updated, statsValueStyle)
	add("Skipped", rep.Skipped, mutedTextStyle)
	if rep.Missing > 0 {
		add("Missing", rep.Missing, warningTextStyle)
	}
	if rep.Removed > 0 {
		add("Removed", rep.Removed, warningTextStyle)
	}
	if rep.Verified > 0 {
		add("Verified", rep.Verified, successTextStyle)
	}
	if rep.Mismatched > 0 {
		add("Mismatched", rep.Mismatched, errorTextStyle)
	}

	errStyle := mutedTextStyle
	if rep.Errored > 0 {
		errStyle = errorTextStyle
	}
	add("Errors", rep.Errored, errStyle)
	rows = append(rows, row{"Elapsed", rep.Elapsed.Round(time.Millisecond).String(), statsValueStyle})

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("  %s %s",
			statsLabelStyle.Render(padRight(r.label+":", 12)),
			r.style.Render(padLeft(r.value, 10)))
	}
	return out
}

// errorListLines renders the scrollable error list, one line per
// visible row, padded so the footer stays put.
func (m ResultModel) errorListLines(width int) []string {
	if len(m.errors) == 0 {
		return []string{"", center(mutedTextStyle.Render("No errors."), width), ""}
	}

	lines := []string{errorTextStyle.Render(fmt.Sprintf("  Errors (%d)", len(m.errors)))}

	visibleRows := m.visibleRows()
	for i := m.offset; i < m.offset+visibleRows && i < len(m.errors); i++ {
		lines = append(lines, m.renderErrorLine(m.errors[i], i == m.cursor, width-8))
		if i == m.cursor {
			lines = append(lines, m.renderErrorDetail(m.errors[i], width))
		}
	}
	for len(lines) < visibleRows+2 {
		lines = append(lines, "")
	}
	return lines
}

// renderErrorLine renders a single error path line.
func (m ResultModel) renderErrorLine(e report.ScanError, isCursor bool, pathWidth int) string {
	if isCursor {
		line := fmt.Sprintf("  %s %s", cursorStyle.Render(">"), truncatePath(e.Path, pathWidth))
		return selectedItemStyle.Width(pathWidth + 4).Render(line)
	}
	return normalItemStyle.Render("    " + truncatePath(e.Path, pathWidth))
}

// renderErrorDetail renders the full message under the cursor row.
func (m ResultModel) renderErrorDetail(e report.ScanError, width int) string {
	msg := e.Message
	if maxLen := width - 14; len(msg) > maxLen && maxLen > 3 {
		msg = msg[:maxLen-3] + "..."
	}
	return detailStyle.Render(msg)
}

// renderFooter renders the footer with key hints.
func (m ResultModel) renderFooter() string {
	hint := func(key, desc string) string {
		return keyStyle.Render("["+key+"]") + " " + keyDescStyle.Render(desc)
	}
	return "  " + hint("↑↓", "Scroll") + "  " + hint("l", "Logs") + "  " + hint("q", "Quit")
}

// visibleRows returns the number of error rows that fit on screen after
// the header, metrics, summary, dividers, and footer.
func (m ResultModel) visibleRows() int {
	return max(m.height-m.summaryLines()-10, 4)
}

// summaryLines returns the number of lines the summary table occupies.
func (m ResultModel) summaryLines() int {
	lines := 6
	if m.report == nil {
		return lines
	}
	for _, n := range []int{m.report.Missing, m.report.Removed, m.report.Verified, m.report.Mismatched} {
		if n > 0 {
			lines++
		}
	}
	return lines
}

// SetDimensions updates the width and height.
func (m *ResultModel) SetDimensions(width, height int) {
	m.width, m.height = width, height
}
