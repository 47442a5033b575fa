package output

import (
	"bytes"
	"sync"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
)

// TemplateFormatter renders rows through a user-supplied Go
// text/template. The template receives the full Result plus a computed
// TotalSize, so both per-row and whole-listing output can be built.
type TemplateFormatter struct {
	templateStr string
	template    *template.Template
	mu          sync.Mutex
}

// templateData wraps Result with fields computed at render time.
type templateData struct {
	*Result
	TotalSize int64
}

// NewTemplateFormatter creates a template formatter rendering templateStr.
// The template is compiled lazily on first Format call.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{
		templateStr: templateStr,
	}
}

// SetTemplate replaces the template string. The next Format call
// recompiles.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil
}

// templateFuncs returns the functions available inside templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// date formats a time.Time using the provided layout, rendering
		// the zero time as empty.
		// Usage: {{date .ModTime "2006-01-02"}}
		"date": func(t time.Time, layout string) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},

		// bytes formats a byte count as a human-readable IEC size.
		// Usage: {{bytes .Size}}
		"bytes": func(size int64) string {
			return humanize.IBytes(uint64(size))
		},

		// fingerprint abbreviates a fingerprint string to its scheme and
		// leading hex digits. An empty hash stays empty.
		// Usage: {{fingerprint .Hash}}
		"fingerprint": func(hash string) string {
			return shortHash(hash)
		},
	}
}

// Format compiles the template if needed and executes it into w.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.template == nil {
		tmpl, err := template.New("output").Funcs(templateFuncs()).Parse(f.templateStr)
		if err != nil {
			return err
		}
		f.template = tmpl
	}

	data := templateData{
		Result:    r,
		TotalSize: r.TotalSize(),
	}

	return f.template.Execute(w, data)
}

// defaultTemplate mirrors the plain formatter's columns so -o template
// without a custom template still produces usable output.
const defaultTemplate = `{{range .Rows}}{{.SizeHuman}}	{{.Hash}}	{{.Path}}
{{end}}`

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(defaultTemplate)
	})
}

// Ensure TemplateFormatter implements Formatter.
var _ Formatter = (*TemplateFormatter)(nil)
