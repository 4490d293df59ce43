package exportable

import (
	"fmt"
	"io"
	"strings"
)

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// TSVExporter writes tab-separated values with a header row of column
// labels. Tabs and line breaks inside cells are replaced by spaces.
type TSVExporter struct{}

func (TSVExporter) Extension() string   { return "tsv" }
func (TSVExporter) ContentType() string { return "text/tab-separated-values" }

func (TSVExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		cols := t.Columns()
		if err := writeTSVRow(w, labels(cols)); err != nil {
			return err
		}
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			if err := writeTSVRow(w, textCells(cols, row)); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeTSVRow(w io.Writer, cells []string) error {
	for i, cell := range cells {
		cells[i] = tsvEscaper.Replace(cell)
	}
	_, err := fmt.Fprintln(w, strings.Join(cells, "\t"))
	return err
}
