package exportable

import (
	"encoding/csv"
	"io"
)

// csvFlushRows is how many rows the CSV writer buffers before flushing.
const csvFlushRows = 100

// CSVExporter writes comma-separated values with a header row of column
// labels.
type CSVExporter struct {
	// Delimiter is the field separator. Default: comma.
	Delimiter rune
}

func (CSVExporter) Extension() string   { return "csv" }
func (CSVExporter) ContentType() string { return "text/csv" }

func (e CSVExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if e.Delimiter != 0 {
			cw.Comma = e.Delimiter
		}
		cols := t.Columns()
		if err := cw.Write(labels(cols)); err != nil {
			return err
		}
		n := 0
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			if err := cw.Write(textCells(cols, row)); err != nil {
				return err
			}
			if n++; n%csvFlushRows == 0 {
				cw.Flush()
				if err := cw.Error(); err != nil {
					return err
				}
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
