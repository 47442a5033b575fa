package output

import (
	"bytes"
)

// writeDelimited writes every row's path followed by the delimiter byte.
// Paths are emitted verbatim, so downstream tools see exactly what the
// catalog stores.
func writeDelimited(w *bytes.Buffer, rows []Row, delim byte) {
	for _, row := range rows {
		w.WriteString(row.Path)
		w.WriteByte(delim)
	}
}

// PathsFormatter emits one path per line with no other columns, for
// piping into line-oriented tools.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	writeDelimited(w, r.Rows, '\n')
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)

// NullFormatter emits null-delimited paths for xargs -0 and friends.
// Media filenames routinely carry spaces and quotes; the null byte is
// the only delimiter that cannot appear in a path.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	writeDelimited(w, r.Rows, 0)
	return nil
}

func init() {
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

// Ensure NullFormatter implements Formatter.
var _ Formatter = (*NullFormatter)(nil)
