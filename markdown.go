package exportable

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

var markdownEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// MarkdownExporter writes a GitHub-flavored Markdown table headed by the
// column verbose names. Numeric columns are right aligned. Column widths
// depend on every row, so it materializes the table.
type MarkdownExporter struct{}

func (MarkdownExporter) Extension() string    { return "md" }
func (MarkdownExporter) ContentType() string  { return "text/markdown" }
func (MarkdownExporter) RequiresStrict() bool { return true }

func (MarkdownExporter) Dump(w io.Writer, t Table, h Hints) error {
	if err := t.Materialize(); err != nil {
		return err
	}
	cols := t.Columns()
	rows, err := collectText(t, cols)
	if err != nil {
		return err
	}
	header := verboseNames(cols)
	for _, cells := range append([][]string{header}, rows...) {
		for i, cell := range cells {
			cells[i] = markdownEscaper.Replace(cell)
		}
	}

	// Minimum width 3 leaves room for alignment markers.
	widths := make([]int, len(cols))
	for i, cell := range header {
		widths[i] = max(3, runewidth.StringWidth(cell))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	aligns := columnAligns(cols)

	return writeText(w, h, func(w io.Writer) error {
		if err := writeMarkdownRow(w, header, widths, aligns); err != nil {
			return err
		}
		sep := make([]string, len(widths))
		for i, width := range widths {
			switch aligns[i] {
			case AlignRight:
				sep[i] = strings.Repeat("-", width-1) + ":"
			case AlignCenter:
				sep[i] = ":" + strings.Repeat("-", width-2) + ":"
			default:
				sep[i] = strings.Repeat("-", width)
			}
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
			return err
		}
		for _, row := range rows {
			if err := writeMarkdownRow(w, row, widths, aligns); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeMarkdownRow(w io.Writer, cells []string, widths []int, aligns []Alignment) error {
	padded := make([]string, len(widths))
	for i, width := range widths {
		padded[i] = alignCell(cells[i], width, aligns[i])
	}
	_, err := fmt.Fprintf(w, "| %s |\n", strings.Join(padded, " | "))
	return err
}
