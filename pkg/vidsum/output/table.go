package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// tableHeader names the columns shared by the tabular formatters.
var tableHeader = [3]string{"SIZE", "FINGERPRINT", "PATH"}

// tableCells renders one row into those columns.
func tableCells(row Row) [3]string {
	return [3]string{row.SizeHuman, rowHashCell(row), row.Path}
}

// TSVFormatter writes a tab-separated table: a header row followed by one
// line per file.
type TSVFormatter struct{}

func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(strings.Join(tableHeader[:], "\t") + "\n")
	for _, row := range r.Rows {
		cells := tableCells(row)
		w.WriteString(strings.Join(cells[:], "\t") + "\n")
	}
	return nil
}

// CSVFormatter writes RFC 4180 CSV via encoding/csv, so cells containing
// commas or quotes survive a round trip.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader[:]); err != nil {
		return err
	}
	for _, row := range r.Rows {
		cells := tableCells(row)
		if err := cw.Write(cells[:]); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarkdownFormatter writes a GitHub-flavored Markdown table.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("| SIZE | FINGERPRINT | PATH |\n")
	w.WriteString("|------|-------------|------|\n")
	for _, row := range r.Rows {
		cells := tableCells(row)
		fmt.Fprintf(w, "| %s | %s | %s |\n",
			escapeMarkdownPipe(cells[0]), escapeMarkdownPipe(cells[1]), escapeMarkdownPipe(cells[2]))
	}
	return nil
}

// escapeMarkdownPipe escapes literal pipes so they don't break table cells.
func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var (
	_ Formatter = (*TSVFormatter)(nil)
	_ Formatter = (*CSVFormatter)(nil)
	_ Formatter = (*MarkdownFormatter)(nil)
)

func init() {
	Register("tsv", func() Formatter { return &TSVFormatter{} })
	Register("csv", func() Formatter { return &CSVFormatter{} })
	Register("markdown", func() Formatter { return &MarkdownFormatter{} })
}
