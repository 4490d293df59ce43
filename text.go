package exportable

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// TextExporter renders a table as aligned plain text for terminals and
// logs. Numeric columns are right aligned. It needs every row to size the
// columns, so it materializes the table.
type TextExporter struct {
	// Border selects the border characters. Default: BorderRounded.
	Border BorderStyle
	// Title is centered above the header of a bordered table.
	Title string
	// Caption is written on its own line below the table.
	Caption string
	// NumberHeader, when set, prepends a row number column with this header.
	NumberHeader string
	// MaxWidths truncates cells of the labeled columns with "...".
	MaxWidths map[string]int
	// WrapWidths wraps cells of the labeled columns onto several lines.
	WrapWidths map[string]int
	// PageSize repeats the header every PageSize rows. Zero disables it.
	PageSize int
}

func (TextExporter) Extension() string   { return "txt" }
func (TextExporter) ContentType() string { return "text/plain" }
func (TextExporter) RequiresStrict() bool { return true }

func (e TextExporter) Dump(w io.Writer, t Table, h Hints) error {
	if err := t.Materialize(); err != nil {
		return err
	}
	cols := t.Columns()
	header := verboseNames(cols)
	rows, err := collectText(t, cols)
	if err != nil {
		return err
	}

	lay := &textLayout{
		aligns: columnAligns(cols),
		max:    perColumn(cols, e.MaxWidths),
		wrap:   perColumn(cols, e.WrapWidths),
	}
	if e.NumberHeader != "" {
		header = append([]string{e.NumberHeader}, header...)
		for i, row := range rows {
			rows[i] = append([]string{strconv.Itoa(i + 1)}, row...)
		}
		lay.aligns = append([]Alignment{AlignRight}, lay.aligns...)
		lay.max = append([]int{0}, lay.max...)
		lay.wrap = append([]int{0}, lay.wrap...)
	}
	lay.measure(header, rows)

	return writeText(w, h, func(w io.Writer) error {
		var err error
		if e.Border == BorderNone {
			err = lay.renderPlain(w, header, rows, e.PageSize)
		} else {
			bc, ok := borderSets[e.Border]
			if !ok {
				return fmt.Errorf("%w: border style %d", ErrConfiguration, e.Border)
			}
			err = lay.renderBordered(w, bc, e.Title, header, rows, e.PageSize)
		}
		if err != nil {
			return err
		}
		if e.Caption != "" {
			if _, err := fmt.Fprintln(w, e.Caption); err != nil {
				return err
			}
		}
		return nil
	})
}

func perColumn(cols []*Column, byLabel map[string]int) []int {
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = byLabel[c.Label()]
	}
	return out
}

// textLayout holds the per-column geometry of a text table.
type textLayout struct {
	widths []int
	aligns []Alignment
	max    []int
	wrap   []int
}

func (l *textLayout) measure(header []string, rows [][]string) {
	l.widths = make([]int, len(header))
	for i, cell := range header {
		l.widths[i] = runewidth.StringWidth(cell)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > l.widths[i] {
				l.widths[i] = w
			}
		}
	}
	for i := range l.widths {
		for _, limit := range []int{l.max[i], l.wrap[i]} {
			if limit > 0 && l.widths[i] > limit {
				l.widths[i] = limit
			}
		}
	}
}

// lines splits a row into the visual lines it occupies once wrapped.
func (l *textLayout) lines(cells []string) [][]string {
	wrapped := make([][]string, len(l.widths))
	n := 1
	for i, width := range l.widths {
		if l.wrap[i] > 0 {
			wrapped[i] = wrapCell(cells[i], width)
		} else {
			wrapped[i] = []string{cells[i]}
		}
		n = max(n, len(wrapped[i]))
	}
	out := make([][]string, n)
	for line := range n {
		out[line] = make([]string, len(l.widths))
		for i := range l.widths {
			if line < len(wrapped[i]) {
				out[line][i] = formatTableCell(wrapped[i][line], l.widths[i], l.aligns[i])
			} else {
				out[line][i] = strings.Repeat(" ", l.widths[i])
			}
		}
	}
	return out
}

func (l *textLayout) renderPlain(w io.Writer, header []string, rows [][]string, pageSize int) error {
	sep := make([]string, len(l.widths))
	for i, width := range l.widths {
		sep[i] = strings.Repeat("-", width)
	}
	writeSep := func() error {
		_, err := fmt.Fprintln(w, strings.Join(sep, "  "))
		return err
	}
	writeRow := func(cells []string) error {
		for _, parts := range l.lines(cells) {
			if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " ")); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(header); err != nil {
		return err
	}
	if err := writeSep(); err != nil {
		return err
	}
	for i, row := range rows {
		if pageSize > 0 && i > 0 && i%pageSize == 0 {
			if err := writeSep(); err != nil {
				return err
			}
			if err := writeRow(header); err != nil {
				return err
			}
			if err := writeSep(); err != nil {
				return err
			}
		}
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (l *textLayout) renderBordered(w io.Writer, bc borderChars, title string, header []string, rows [][]string, pageSize int) error {
	hline := func(left, mid, right string) error {
		var sb strings.Builder
		sb.WriteString(left)
		for i, width := range l.widths {
			sb.WriteString(strings.Repeat(bc.horizontal, width+2))
			if i < len(l.widths)-1 {
				sb.WriteString(mid)
			}
		}
		sb.WriteString(right)
		_, err := fmt.Fprintln(w, sb.String())
		return err
	}
	writeRow := func(cells []string) error {
		for _, parts := range l.lines(cells) {
			line := bc.vertical + " " + strings.Join(parts, " "+bc.vertical+" ") + " " + bc.vertical
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
	divider := func() error { return hline(bc.leftTee, bc.cross, bc.rightTee) }

	if title != "" {
		// Full-width top border, then the title, then the column tees.
		if err := hline(bc.topLeft, bc.horizontal, bc.topRight); err != nil {
			return err
		}
		inner := l.innerWidth() - 2
		if _, err := fmt.Fprintf(w, "%s %s %s\n", bc.vertical, alignCell(title, inner, AlignCenter), bc.vertical); err != nil {
			return err
		}
		if err := hline(bc.leftTee, bc.topTee, bc.rightTee); err != nil {
			return err
		}
	} else if err := hline(bc.topLeft, bc.topTee, bc.topRight); err != nil {
		return err
	}

	if err := writeRow(header); err != nil {
		return err
	}
	if err := divider(); err != nil {
		return err
	}
	for i, row := range rows {
		if pageSize > 0 && i > 0 && i%pageSize == 0 {
			if err := divider(); err != nil {
				return err
			}
			if err := writeRow(header); err != nil {
				return err
			}
			if err := divider(); err != nil {
				return err
			}
		}
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return hline(bc.bottomLeft, bc.bottomTee, bc.bottomRight)
}

// innerWidth is the width between the outer borders: each cell plus one
// space of padding per side, and one border character between cells.
func (l *textLayout) innerWidth() int {
	n := 0
	for _, w := range l.widths {
		n += w + 2
	}
	if len(l.widths) > 1 {
		n += len(l.widths) - 1
	}
	return n
}

func wrapCell(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	for len(s) > 0 {
		line := runewidth.Truncate(s, width, "")
		if line == "" {
			// A rune wider than the column still advances.
			line = string([]rune(s)[0])
		}
		lines = append(lines, line)
		s = s[len(line):]
	}
	return lines
}

func formatTableCell(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		if width <= 3 {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, "...")
		}
	}
	return alignCell(s, width, align)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
