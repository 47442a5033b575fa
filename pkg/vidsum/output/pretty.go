package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	// Build header
	header := f.formatHeader(r)
	w.WriteString(header)
	w.WriteString("\n")

	// Scan results carry their counters in the header; the file table
	// and footer only apply to listings.
	if r.Summary == nil || len(r.Rows) > 0 {
		table := f.formatTable(r)
		w.WriteString(table)

		footer := f.formatFooter(r)
		w.WriteString(footer)
	}

	// Add warnings if any
	if len(r.Warnings) > 0 {
		warnings := f.formatWarnings(r.Warnings)
		w.WriteString("\n")
		w.WriteString(warnings)
	}

	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	// Source line
	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	// Scan summary line
	if s := r.Summary; s != nil {
		var infoParts []string

		jobLabel := LabelStyle.Render("Job:")
		jobValue := MutedStyle.Render(shortJobID(s.JobID))
		infoParts = append(infoParts, fmt.Sprintf("%s %s", jobLabel, jobValue))

		modeLabel := LabelStyle.Render("Mode:")
		modeValue := ValueStyle.Render(s.Mode)
		infoParts = append(infoParts, fmt.Sprintf("%s %s", modeLabel, modeValue))

		foundLabel := LabelStyle.Render("Found:")
		foundValue := ValueStyle.Render(fmt.Sprintf("%d files in %s",
			s.Found, formatDuration(s.Duration)))
		infoParts = append(infoParts, fmt.Sprintf("%s %s", foundLabel, foundValue))

		lines = append(lines, strings.Join(infoParts, "  "))
		lines = append(lines, f.formatCounters(s))
	}

	// Interrupted notice
	if r.Interrupted {
		interruptedStyle := WarningStyle.Bold(true)
		lines = append(lines, interruptedStyle.Render("Scan interrupted by user"))
	}

	content := strings.Join(lines, "\n")
	return HeaderBox.Render(content)
}

// formatCounters builds the counter line for a scan summary.
func (f *PrettyFormatter) formatCounters(s *Summary) string {
	parts := []string{
		f.formatCounter("New", s.New, SuccessStyle),
		f.formatCounter("Updated", s.Updated, ValueStyle),
		f.formatCounter("Skipped", s.Skipped, MutedStyle),
	}

	if s.Missing > 0 {
		parts = append(parts, f.formatCounter("Missing", s.Missing, WarningStyle))
	}
	if s.Removed > 0 {
		parts = append(parts, f.formatCounter("Removed", s.Removed, WarningStyle))
	}
	if s.Mismatched > 0 {
		parts = append(parts, f.formatCounter("Mismatched", s.Mismatched, ErrorStyle))
	}
	if s.Errored > 0 {
		parts = append(parts, f.formatCounter("Errors", s.Errored, ErrorStyle))
	}

	return strings.Join(parts, "  ")
}

// formatCounter returns a styled "Label: value" pair.
func (f *PrettyFormatter) formatCounter(label string, value int, style lipgloss.Style) string {
	return fmt.Sprintf("%s %s",
		LabelStyle.Render(label+":"),
		style.Render(fmt.Sprintf("%d", value)))
}

// formatTable builds the file table with SIZE, FINGERPRINT, and PATH columns.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Rows) == 0 {
		return MutedStyle.Render("  No files found matching criteria\n")
	}

	var sb strings.Builder

	// Column headers
	sizeHeader := TableHeaderStyle.Render("SIZE")
	hashHeader := TableHeaderStyle.Render(padRight("FINGERPRINT", shortHashWidth))
	pathHeader := TableHeaderStyle.Render("PATH")
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", sizeHeader, hashHeader, pathHeader))

	// Calculate max size width for alignment
	maxSizeWidth := 0
	for _, row := range r.Rows {
		if len(row.SizeHuman) > maxSizeWidth {
			maxSizeWidth = len(row.SizeHuman)
		}
	}
	if maxSizeWidth < 8 {
		maxSizeWidth = 8 // Minimum width
	}

	// File rows
	for _, row := range r.Rows {
		sizeStr := SizeStyle.Render(padLeft(row.SizeHuman, maxSizeWidth))
		hashStr := f.formatRowHash(row)
		pathStr := PathStyle.Render(row.Path)
		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", sizeStr, hashStr, pathStr))
	}

	return sb.String()
}

// formatRowHash returns the styled fingerprint cell for a row. Rows
// without a fingerprint show their scan status instead.
func (f *PrettyFormatter) formatRowHash(row Row) string {
	if row.Hash != "" {
		return HashStyle.Render(padRight(shortHash(row.Hash), shortHashWidth))
	}
	label := row.Status
	if label == "" {
		label = "-"
	}
	return StatusStyle(row.Status).Render(padRight(label, shortHashWidth))
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	// File count
	fileCountLabel := LabelStyle.Render("Files:")
	fileCountValue := ValueStyle.Render(fmt.Sprintf("%d", r.TotalRows))
	parts = append(parts, fmt.Sprintf("%s %s", fileCountLabel, fileCountValue))

	// Total size
	totalSize := r.TotalSize()
	totalSizeLabel := LabelStyle.Render("Total:")
	totalSizeValue := SizeStyle.Render(humanize.IBytes(uint64(totalSize)))
	parts = append(parts, fmt.Sprintf("%s %s", totalSizeLabel, totalSizeValue))

	// Hints
	hint := MutedStyle.Render("Use -o plain for unformatted output")
	parts = append(parts, hint)

	content := strings.Join(parts, "  ")
	return FooterBox.Render(content)
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	titleStyle := WarningStyle.Bold(true)
	sb.WriteString(titleStyle.Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// shortHashWidth is the display width of the fingerprint column.
const shortHashWidth = 22

// shortHash abbreviates a fingerprint for table display, keeping the
// scheme and the leading hex digits (e.g., "xxh64:1a2b3c4d5e6f...").
func shortHash(hash string) string {
	if len(hash) <= shortHashWidth {
		return hash
	}
	return hash[:shortHashWidth-3] + "..."
}

// shortJobID abbreviates a job UUID to its first group for display.
func shortJobID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}

// padLeft pads a string with spaces on the left to achieve the desired width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// padRight pads a string with spaces on the right to achieve the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
