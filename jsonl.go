package exportable

import "io"

// JSONLExporter writes one JSON object per line, keyed by column label.
type JSONLExporter struct{}

func (JSONLExporter) Extension() string   { return "jsonl" }
func (JSONLExporter) ContentType() string { return "application/jsonl" }

func (JSONLExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		cols := t.Columns()
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			obj, err := encodeObject(cols, row)
			if err != nil {
				return err
			}
			if _, err := w.Write(append(obj, '\n')); err != nil {
				return err
			}
		}
		return nil
	})
}
