package exportable

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// HTMLExporter writes an HTML <table> headed by the column verbose names.
// Rows are written as they are resolved.
type HTMLExporter struct {
	// Caption is rendered as the table caption. Empty omits it.
	Caption string
}

func (HTMLExporter) Extension() string   { return "html" }
func (HTMLExporter) ContentType() string { return "text/html" }

func (e HTMLExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		cols := t.Columns()
		aligns := columnAligns(cols)

		if _, err := fmt.Fprintln(w, "<table>"); err != nil {
			return err
		}
		if e.Caption != "" {
			if _, err := fmt.Fprintf(w, "  <caption>%s</caption>\n", html.EscapeString(e.Caption)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "  <thead>"); err != nil {
			return err
		}
		if err := writeHTMLRow(w, "th", verboseNames(cols), aligns); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "  </thead>\n  <tbody>"); err != nil {
			return err
		}
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			if err := writeHTMLRow(w, "td", textCells(cols, row), aligns); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(w, "  </tbody>\n</table>")
		return err
	})
}

func writeHTMLRow(w io.Writer, tag string, cells []string, aligns []Alignment) error {
	var sb strings.Builder
	sb.WriteString("    <tr>\n")
	for i, cell := range cells {
		fmt.Fprintf(&sb, "      <%s%s>%s</%s>\n", tag, alignStyle(aligns[i]), html.EscapeString(cell), tag)
	}
	sb.WriteString("    </tr>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func alignStyle(a Alignment) string {
	switch a {
	case AlignRight:
		return ` style="text-align: right"`
	case AlignCenter:
		return ` style="text-align: center"`
	default:
		return ""
	}
}
