package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// renderAppHeader renders the application header with scan stats.
func renderAppHeader(found int, mode string, interrupted bool) string {
	header := " 🎬 " + titleStyle.Bold(true).Render("VIDSUM") +
		mutedTextStyle.Render(fmt.Sprintf("  %s files  •  %s",
			humanize.Comma(int64(found)), mode))

	if interrupted {
		header += warningTextStyle.Render("  ⚠ interrupted")
	}
	return header
}

// renderScanMetrics renders a compact metrics line for the results view.
func renderScanMetrics(newCount, updated int, elapsed time.Duration) string {
	var parts []string
	if newCount > 0 || updated > 0 {
		parts = append(parts, fmt.Sprintf("Processed: %s new, %s updated",
			humanize.Comma(int64(newCount)), humanize.Comma(int64(updated))))
	}
	if elapsed > 0 {
		parts = append(parts, "Time: "+elapsed.Round(time.Millisecond).String())
	}
	if len(parts) == 0 {
		return ""
	}
	return mutedTextStyle.Render("  " + strings.Join(parts, "  |  "))
}
