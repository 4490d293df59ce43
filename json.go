package exportable

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONExporter writes a JSON array with one object per row, keyed by column
// label in column order. Rows are written as they are resolved.
type JSONExporter struct {
	// Indent, when set, puts every row on its own line prefixed by Indent.
	Indent string
}

func (JSONExporter) Extension() string   { return "json" }
func (JSONExporter) ContentType() string { return "application/json" }

func (e JSONExporter) Dump(w io.Writer, t Table, h Hints) error {
	return writeText(w, h, func(w io.Writer) error {
		sep, end := ",", "]\n"
		if e.Indent != "" {
			sep, end = ",\n"+e.Indent, "\n]\n"
		}
		cols := t.Columns()
		first := true
		for row, err := range t.Rows() {
			if err != nil {
				return err
			}
			obj, err := encodeObject(cols, row)
			if err != nil {
				return err
			}
			lead := sep
			if first {
				lead, first = "[", false
				if e.Indent != "" {
					lead = "[\n" + e.Indent
				}
			}
			if _, err := io.WriteString(w, lead); err != nil {
				return err
			}
			if _, err := w.Write(obj); err != nil {
				return err
			}
		}
		if first {
			_, err := io.WriteString(w, "[]\n")
			return err
		}
		_, err := io.WriteString(w, end)
		return err
	})
}

// encodeObject renders a row as a JSON object whose keys keep column order.
func encodeObject(cols []*Column, row []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, c := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(c.Label()); err != nil {
			return nil, err
		}
		trimNewline(&buf)
		buf.WriteByte(':')
		if err := enc.Encode(plainValue(c, row[i])); err != nil {
			return nil, err
		}
		trimNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func trimNewline(buf *bytes.Buffer) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
}
