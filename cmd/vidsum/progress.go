package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/vidsum/vidsum/pkg/vidsum/scan"
)

// progressDisplay renders single-line scan progress that updates in
// place using carriage return. Only active when stdout is a terminal.
type progressDisplay struct {
	enabled   bool
	phase     scan.Phase
	hasOutput bool
}

func newProgressDisplay(enabled bool) *progressDisplay {
	return &progressDisplay{
		enabled: enabled && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// update renders the progress line for the current phase. A phase
// change finishes the previous line so each phase leaves one line of
// history. Calls arrive on a single goroutine.
func (p *progressDisplay) update(pr scan.Progress) {
	if !p.enabled {
		return
	}

	if pr.Phase != p.phase {
		p.finish()
		p.phase = pr.Phase
	}

	switch pr.Phase {
	case scan.PhaseDiscover:
		p.write(fmt.Sprintf("Discovering... %s files (%s)",
			humanize.Comma(int64(pr.Found)), formatRate(pr.Rate)))
	case scan.PhaseHash:
		p.write(fmt.Sprintf("Hashing... %s/%s (%s)",
			humanize.Comma(int64(pr.Done)), humanize.Comma(int64(pr.Total)), formatRate(pr.Rate)))
	case scan.PhaseVerify:
		p.write(fmt.Sprintf("Verifying... %s/%s (%s)",
			humanize.Comma(int64(pr.Done)), humanize.Comma(int64(pr.Total)), formatRate(pr.Rate)))
	case scan.PhasePersist:
		p.write(fmt.Sprintf("Cataloging... %s/%s (%s)",
			humanize.Comma(int64(pr.Done)), humanize.Comma(int64(pr.Total)), formatRate(pr.Rate)))
	}
}

// write replaces the current line: \r moves to the start of the line,
// \033[K clears to the end.
func (p *progressDisplay) write(text string) {
	fmt.Fprintf(os.Stdout, "\r\033[K%s", text)
	p.hasOutput = true
}

// finish terminates the current progress line with a newline.
func (p *progressDisplay) finish() {
	if p.enabled && p.hasOutput {
		fmt.Fprintln(os.Stdout)
		p.hasOutput = false
	}
}

// formatRate formats a files-per-second rate for display. Rates >= 1
// are shown as comma-separated integers (e.g., "7,440/sec"); rates
// below 1 keep one decimal place (e.g., "0.3/sec").
func formatRate(rate float64) string {
	if rate >= 1.0 {
		return humanize.Comma(int64(rate)) + "/sec"
	}
	return fmt.Sprintf("%.1f/sec", rate)
}
