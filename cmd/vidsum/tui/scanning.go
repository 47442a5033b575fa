package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vidsum/vidsum/pkg/vidsum/logging"
	"github.com/vidsum/vidsum/pkg/vidsum/scan"
)

// recentLogLines is the size of the log tail shown under the stats
// while scanning.
const recentLogLines = 5

// ScanModel represents the scanning phase of the TUI.
type ScanModel struct {
	progress  scan.Progress
	spinner   spinner.Model
	startTime time.Time
	width     int
	height    int
	roots     []string
	mode      string
	logs      *logging.Buffer
	done      bool
	err       error
}

// ProgressMsg is sent when scan progress is updated.
type ProgressMsg scan.Progress

// ScanCompleteMsg is sent when the scan is complete.
type ScanCompleteMsg struct {
	Report *scan.Report
	Err    error
}

// NewScanModel creates a new scanning model.
func NewScanModel(roots []string, mode string) ScanModel {
	return ScanModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Points),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(primaryColor))),
		startTime: time.Now(),
		width:     80,
		height:    24,
		roots:     roots,
		mode:      mode,
		logs:      logging.GetBuffer(),
	}
}

// Init initializes the scanning model.
func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the scanning model.
func (m ScanModel) Update(msg tea.Msg) (ScanModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case ProgressMsg:
		m.progress = scan.Progress(msg)
		return m, nil

	case ScanCompleteMsg:
		m.done = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the scanning model.
func (m ScanModel) View() string {
	contentWidth := max(m.width-4, 40)

	sections := []string{
		"",
		m.renderHeader(contentWidth),
		renderDivider(contentWidth),
		"",
		m.statusLine(contentWidth),
		"",
		m.renderProgressBar(contentWidth),
		"",
		m.renderStats(contentWidth),
		m.renderRecentLogs(contentWidth),
	}
	content := strings.Join(sections, "\n")

	// Pad to fill the box so the border reaches the bottom edge.
	if lines := strings.Count(content, "\n") + 1; m.height-2 > lines {
		content += strings.Repeat("\n", m.height-2-lines)
	}

	return outerBoxStyle.Width(m.width - 2).Height(m.height - 2).Render(content)
}

// statusLine is the spinner row, or the outcome once the scan ends.
func (m ScanModel) statusLine(width int) string {
	switch {
	case m.done && m.err != nil:
		return errorTextStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	case m.done:
		return successTextStyle.Render("  Scan complete!")
	default:
		return fmt.Sprintf("  %s %s", m.spinner.View(), m.renderPhaseLine(width))
	}
}

// renderHeader renders the title bar with the scan mode and key hints.
func (m ScanModel) renderHeader(width int) string {
	name := "  vidsum scan"
	if m.mode != "scan" {
		name += " (" + m.mode + ")"
	}
	title := titleStyle.Render(name)
	hint := mutedTextStyle.Render("[l] Logs  [Ctrl+C] Stop")

	gap := max(width-lipgloss.Width(title)-lipgloss.Width(hint), 1)
	return title + strings.Repeat(" ", gap) + hint
}

// renderPhaseLine renders the status text for the current phase.
func (m ScanModel) renderPhaseLine(width int) string {
	p := m.progress
	counted := humanize.Comma(int64(p.Done)) + " / " + humanize.Comma(int64(p.Total))

	switch p.Phase {
	case scan.PhaseHash:
		return fmt.Sprintf("Fingerprinting: %s (%s)", counted, formatRate(p.Rate))
	case scan.PhaseVerify:
		return fmt.Sprintf("Verifying: %s (%s)", counted, formatRate(p.Rate))
	case scan.PhasePersist:
		return "Cataloging: " + counted
	default:
		roots := truncatePath(strings.Join(m.roots, ", "), width-40)
		return fmt.Sprintf("Discovering: %s files (%s) in %s",
			humanize.Comma(int64(p.Found)), formatRate(p.Rate), roots)
	}
}

// renderProgressBar draws a determinate bar once the phase total is
// known, and a sweeping pulse while discovery is still counting.
func (m ScanModel) renderProgressBar(width int) string {
	barWidth := max(width-8, 10)

	if total := m.progress.Total; total > 0 {
		done := min(m.progress.Done, total)
		filled := done * barWidth / total
		return "  " + progressFillStyle.Render(strings.Repeat("█", filled)) +
			progressEmptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
			fmt.Sprintf(" %d%%", done*100/total)
	}
	return "  " + m.renderPulse(barWidth)
}

// renderPulse draws the indeterminate animation: a pulse-width block
// bouncing across the bar on the elapsed clock.
func (m ScanModel) renderPulse(barWidth int) string {
	position := int(time.Since(m.startTime).Seconds()*2) % (barWidth * 2)
	if position > barWidth {
		position = barWidth*2 - position
	}
	pulseWidth := max(barWidth/5, 3)

	var bar strings.Builder
	for i := range barWidth {
		if d := i - position; -pulseWidth < d && d < pulseWidth {
			bar.WriteString(progressFillStyle.Render("█"))
		} else {
			bar.WriteString(progressEmptyStyle.Render("░"))
		}
	}
	return bar.String()
}

// renderStats renders the six statistics boxes.
func (m ScanModel) renderStats(totalWidth int) string {
	boxWidth := max((totalWidth-20)/6, 9)

	p := m.progress
	stats := []struct {
		label string
		value string
	}{
		{"Found", humanize.Comma(int64(p.Found))},
		{"New", humanize.Comma(int64(p.New))},
		{"Updated", humanize.Comma(int64(p.Updated))},
		{"Skipped", humanize.Comma(int64(p.Skipped))},
		{"Errors", humanize.Comma(int64(p.Errored))},
		{"Time", formatDuration(time.Since(m.startTime))},
	}

	parts := []string{"  "}
	for i, s := range stats {
		if i > 0 {
			parts = append(parts, " ")
		}
		parts = append(parts, m.renderStatBox(s.label, s.value, boxWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderStatBox renders one label-over-value box.
func (m ScanModel) renderStatBox(label, value string, width int) string {
	inner := lipgloss.JoinVertical(lipgloss.Center,
		center(statsLabelStyle.Render(label), width-4),
		center(statsValueStyle.Render(value), width-4))

	return statsBoxStyle.Width(width).Render(inner)
}

// renderRecentLogs renders the tail of the log buffer under the stats.
func (m ScanModel) renderRecentLogs(width int) string {
	if m.logs == nil {
		return ""
	}
	recent := m.logs.Last(recentLogLines)
	if len(recent) == 0 {
		return ""
	}

	lines := []string{"", renderDivider(width)}
	for _, entry := range recent {
		lines = append(lines, "  "+renderLogEntry(entry, width-2))
	}
	return strings.Join(lines, "\n") + "\n"
}

// formatDuration formats a duration as M:SS.
func formatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// formatRate formats an items-per-second rate. Rates >= 1 are shown as
// comma-separated integers, rates below 1 keep one decimal place.
func formatRate(rate float64) string {
	if rate >= 1.0 {
		return humanize.Comma(int64(rate)) + "/sec"
	}
	return fmt.Sprintf("%.1f/sec", rate)
}

// SetProgress replaces the progress snapshot.
func (m *ScanModel) SetProgress(p scan.Progress) { m.progress = p }

// SetDone marks the scan as complete.
func (m *ScanModel) SetDone(err error) {
	m.done = true
	m.err = err
}

// IsDone reports whether the scan has finished.
func (m ScanModel) IsDone() bool { return m.done }

// Error returns the scan failure, if any.
func (m ScanModel) Error() error { return m.err }
