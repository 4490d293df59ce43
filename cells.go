package exportable

import (
	"io"
	"math"
	"time"
)

func labels(cols []*Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label()
	}
	return out
}

func verboseNames(cols []*Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.VerboseName()
	}
	return out
}

func textCells(cols []*Column, row []any) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.ToText(row[i])
	}
	return out
}

// collectText resolves every row of t as text.
func collectText(t Table, cols []*Column) ([][]string, error) {
	var rows [][]string
	for row, err := range t.Rows() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, textCells(cols, row))
	}
	return rows, nil
}

func columnAligns(cols []*Column) []Alignment {
	out := make([]Alignment, len(cols))
	for i, c := range cols {
		if c.Type() == Integer || c.Type() == Float {
			out[i] = AlignRight
		}
	}
	return out
}

// plainValue converts a cell to a value structured encoders render well:
// dates become text and non-finite floats become nil.
func plainValue(c *Column, v any) any {
	switch x := v.(type) {
	case time.Time:
		return c.ToText(x)
	case []byte:
		return string(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	}
	return v
}

// writeText runs fn against w transcoded to the hinted encoding.
func writeText(w io.Writer, h Hints, fn func(io.Writer) error) error {
	tw, err := textWriter(w, h.Encoding)
	if err != nil {
		return err
	}
	if err := fn(tw); err != nil {
		_ = tw.Close()
		return err
	}
	return tw.Close()
}
