package exportable

import (
	"fmt"
	"io"
	"text/template"
)

const goTemplatePrefix = "go-template="

// TemplateExporter renders each row with a Go text/template and writes it
// on its own line. The template receives a map from column label to value:
//
//	exportable.NewTemplateExporter("{{.name}} is {{.age}}")
type TemplateExporter struct {
	tmpl *template.Template
	text string
}

// NewTemplateExporter parses tmpl.
func NewTemplateExporter(tmpl string) (*TemplateExporter, error) {
	t, err := template.New("row").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	return &TemplateExporter{tmpl: t, text: tmpl}, nil
}

func (*TemplateExporter) Extension() string   { return "txt" }
func (*TemplateExporter) ContentType() string { return "text/plain" }

// Template returns the template source.
func (e *TemplateExporter) Template() string { return e.text }

func (e *TemplateExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		cols := t.Columns()
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			data := make(map[string]any, len(cols))
			for i, c := range cols {
				data[c.Label()] = row[i]
			}
			if err := e.tmpl.Execute(w, data); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil
	})
}
