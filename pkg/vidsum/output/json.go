package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// jsonOutput represents the full JSON output structure.
type jsonOutput struct {
	Rows    []jsonRow    `json:"rows"`
	Summary *jsonSummary `json:"summary,omitempty"`
	Meta    jsonMeta     `json:"meta"`
}

// jsonRow represents a file row in JSON output.
type jsonRow struct {
	Path      string    `json:"path"`
	Name      string    `json:"name,omitempty"`
	Dir       string    `json:"dir,omitempty"`
	Ext       string    `json:"ext,omitempty"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	ModTime   time.Time `json:"mod_time,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	ScannedAt time.Time `json:"scanned_at,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// jsonSummary represents scan counters in JSON output.
type jsonSummary struct {
	JobID       string   `json:"job_id"`
	Mode        string   `json:"mode"`
	Roots       []string `json:"roots"`
	Found       int      `json:"found"`
	New         int      `json:"new"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	Errored     int      `json:"errored"`
	Removed     int      `json:"removed"`
	Missing     int      `json:"missing"`
	Verified    int      `json:"verified"`
	Mismatched  int      `json:"mismatched"`
	Duration    string   `json:"duration"`
	Incremental bool     `json:"incremental"`
}

// jsonMeta represents metadata in JSON output.
type jsonMeta struct {
	Source      string   `json:"source"`
	TotalRows   int      `json:"total_rows"`
	TotalSize   int64    `json:"total_size"`
	Warnings    []string `json:"warnings,omitempty"`
	Interrupted bool     `json:"interrupted"`
}

// JSONFormatter formats output as a single indented JSON object.
// It produces a complete JSON document with rows, summary, and meta sections.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildOutput converts Result to the JSON output structure.
func (f *JSONFormatter) buildOutput(r *Result) jsonOutput {
	rows := make([]jsonRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = buildJSONRow(row)
	}

	var summary *jsonSummary
	if s := r.Summary; s != nil {
		summary = &jsonSummary{
			JobID:       s.JobID,
			Mode:        s.Mode,
			Roots:       s.Roots,
			Found:       s.Found,
			New:         s.New,
			Updated:     s.Updated,
			Skipped:     s.Skipped,
			Errored:     s.Errored,
			Removed:     s.Removed,
			Missing:     s.Missing,
			Verified:    s.Verified,
			Mismatched:  s.Mismatched,
			Duration:    formatDurationString(s.Duration),
			Incremental: s.Incremental,
		}
	}

	meta := jsonMeta{
		Source:      r.Source,
		TotalRows:   r.TotalRows,
		TotalSize:   r.TotalSize(),
		Warnings:    r.Warnings,
		Interrupted: r.Interrupted,
	}

	return jsonOutput{
		Rows:    rows,
		Summary: summary,
		Meta:    meta,
	}
}

// buildJSONRow converts an output row to its JSON representation.
func buildJSONRow(row Row) jsonRow {
	return jsonRow{
		Path:      row.Path,
		Name:      row.Name,
		Dir:       row.Dir,
		Ext:       row.Ext,
		Size:      row.Size,
		SizeHuman: row.SizeHuman,
		ModTime:   row.ModTime,
		Hash:      row.Hash,
		ScannedAt: row.ScannedAt,
		Status:    row.Status,
		Error:     row.Error,
	}
}

// formatDurationString formats a duration as a string for JSON output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON (one object per line).
// Each row is written as a compact JSON object on its own line.
// This format is suitable for streaming processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, row := range r.Rows {
		data, err := json.Marshal(buildJSONRow(row))
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
