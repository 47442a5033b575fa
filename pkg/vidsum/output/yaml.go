package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML output structure.
type yamlOutput struct {
	Rows    []yamlRow    `yaml:"rows"`
	Summary *yamlSummary `yaml:"summary,omitempty"`
	Meta    yamlMeta     `yaml:"meta"`
}

// yamlRow represents a file row in YAML output.
type yamlRow struct {
	Path      string    `yaml:"path"`
	Name      string    `yaml:"name,omitempty"`
	Dir       string    `yaml:"dir,omitempty"`
	Ext       string    `yaml:"ext,omitempty"`
	Size      int64     `yaml:"size"`
	SizeHuman string    `yaml:"size_human"`
	ModTime   time.Time `yaml:"mod_time,omitempty"`
	Hash      string    `yaml:"hash,omitempty"`
	ScannedAt time.Time `yaml:"scanned_at,omitempty"`
	Status    string    `yaml:"status,omitempty"`
	Error     string    `yaml:"error,omitempty"`
}

// yamlSummary represents scan counters in YAML output.
type yamlSummary struct {
	JobID       string   `yaml:"job_id"`
	Mode        string   `yaml:"mode"`
	Roots       []string `yaml:"roots"`
	Found       int      `yaml:"found"`
	New         int      `yaml:"new"`
	Updated     int      `yaml:"updated"`
	Skipped     int      `yaml:"skipped"`
	Errored     int      `yaml:"errored"`
	Removed     int      `yaml:"removed"`
	Missing     int      `yaml:"missing"`
	Verified    int      `yaml:"verified"`
	Mismatched  int      `yaml:"mismatched"`
	Duration    string   `yaml:"duration"`
	Incremental bool     `yaml:"incremental"`
}

// yamlMeta represents metadata in YAML output.
type yamlMeta struct {
	Source      string   `yaml:"source"`
	TotalRows   int      `yaml:"total_rows"`
	TotalSize   int64    `yaml:"total_size"`
	Warnings    []string `yaml:"warnings,omitempty"`
	Interrupted bool     `yaml:"interrupted"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	output := f.buildOutput(r)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return encoder.Close()
}

// buildOutput converts Result to the YAML output structure.
func (f *YAMLFormatter) buildOutput(r *Result) yamlOutput {
	rows := make([]yamlRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = yamlRow{
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

	var summary *yamlSummary
	if s := r.Summary; s != nil {
		summary = &yamlSummary{
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

	meta := yamlMeta{
		Source:      r.Source,
		TotalRows:   r.TotalRows,
		TotalSize:   r.TotalSize(),
		Warnings:    r.Warnings,
		Interrupted: r.Interrupted,
	}

	return yamlOutput{
		Rows:    rows,
		Summary: summary,
		Meta:    meta,
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
