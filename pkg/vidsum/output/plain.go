package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// PlainFormatter writes an aligned text table with no styling, suitable
// for scripting and piping.
type PlainFormatter struct{}

func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	// Scan results without file rows print counters instead of a table.
	if len(r.Rows) == 0 && r.Summary != nil {
		return f.formatSummary(w, r)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(tableHeader[:], "\t")); err != nil {
		return err
	}
	for _, row := range r.Rows {
		cells := tableCells(row)
		if _, err := fmt.Fprintln(tw, strings.Join(cells[:], "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// formatSummary writes scan counters as stable key/value lines. Every
// counter is always present so scripts can rely on the field set.
func (f *PlainFormatter) formatSummary(w *bytes.Buffer, r *Result) error {
	s := r.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	fields := []struct {
		key   string
		value string
	}{
		{"job", s.JobID},
		{"mode", s.Mode},
		{"found", strconv.Itoa(s.Found)},
		{"new", strconv.Itoa(s.New)},
		{"updated", strconv.Itoa(s.Updated)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"errored", strconv.Itoa(s.Errored)},
		{"removed", strconv.Itoa(s.Removed)},
		{"missing", strconv.Itoa(s.Missing)},
		{"verified", strconv.Itoa(s.Verified)},
		{"mismatched", strconv.Itoa(s.Mismatched)},
		{"elapsed", s.Duration.Round(time.Millisecond).String()},
		{"incremental", strconv.FormatBool(s.Incremental)},
		{"interrupted", strconv.FormatBool(r.Interrupted)},
	}

	for _, field := range fields {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", field.key, field.value); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// rowHashCell returns the fingerprint cell value for tabular output.
// Rows without a fingerprint show their status instead.
func rowHashCell(row Row) string {
	if row.Hash != "" {
		return row.Hash
	}
	if row.Status != "" {
		return row.Status
	}
	return "-"
}

var _ Formatter = (*PlainFormatter)(nil)

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}
