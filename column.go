package exportable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type is the semantic type of a column. It drives text conversion and the
// physical type chosen by typed formats such as XLSX and Parquet.
type Type int

const (
	Integer Type = iota
	Float
	Text
	Date
	DateTime
)

var typeNames = [...]string{"integer", "float", "text", "date", "datetime"}

// String returns the type name.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Layouts used to render and parse date and datetime values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

var dateLayouts = []string{DateLayout, "2006/01/02", "02-01-2006", "01/02/2006", "20060102"}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// RowFunc computes a column value from the entire raw row. It replaces field
// extraction for calculated columns.
type RowFunc func(raw any) (any, error)

// CellFunc post-processes a value extracted from the raw row.
type CellFunc func(v any) (any, error)

// Slot is an entry in a positional column list: either a *Column or [Skip].
type Slot interface {
	slot()
}

type skip struct{}

func (skip) slot() {}

// Skip declares that a raw field is not exposed. It consumes a raw index but
// no view index.
var Skip Slot = skip{}

// Column describes one field of a table.
type Column struct {
	label       string
	verboseName string
	typ         Type
	rowFunc     RowFunc
	cellFunc    CellFunc
	index       int
	viewIndex   int
}

func (*Column) slot() {}

// ColumnOption configures a Column.
type ColumnOption func(*Column)

// WithVerboseName sets the display name. Default: the label.
func WithVerboseName(name string) ColumnOption {
	return func(c *Column) { c.verboseName = name }
}

// WithRowFunc makes the column calculated from the full raw row.
func WithRowFunc(fn RowFunc) ColumnOption {
	return func(c *Column) { c.rowFunc = fn }
}

// WithCellFunc post-processes extracted values.
func WithCellFunc(fn CellFunc) ColumnOption {
	return func(c *Column) { c.cellFunc = fn }
}

// NewColumn returns a column of the given type. An empty label is allowed
// until the column is attached to a table.
func NewColumn(label string, typ Type, opts ...ColumnOption) *Column {
	c := &Column{label: label, typ: typ, index: -1, viewIndex: -1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IntColumn returns an [Integer] column.
func IntColumn(label string, opts ...ColumnOption) *Column {
	return NewColumn(label, Integer, opts...)
}

// FloatColumn returns a [Float] column.
func FloatColumn(label string, opts ...ColumnOption) *Column {
	return NewColumn(label, Float, opts...)
}

// TextColumn returns a [Text] column.
func TextColumn(label string, opts ...ColumnOption) *Column {
	return NewColumn(label, Text, opts...)
}

// DateColumn returns a [Date] column.
func DateColumn(label string, opts ...ColumnOption) *Column {
	return NewColumn(label, Date, opts...)
}

// DateTimeColumn returns a [DateTime] column.
func DateTimeColumn(label string, opts ...ColumnOption) *Column {
	return NewColumn(label, DateTime, opts...)
}

// Label returns the column identifier.
func (c *Column) Label() string { return c.label }

// VerboseName returns the display name, falling back to the label.
func (c *Column) VerboseName() string {
	if c.verboseName == "" {
		return c.label
	}
	return c.verboseName
}

// Type returns the semantic type.
func (c *Column) Type() Type { return c.typ }

// Index returns the raw index assigned by the owning table, or -1.
func (c *Column) Index() int { return c.index }

// ViewIndex returns the view index assigned by the owning table, or -1.
func (c *Column) ViewIndex() int { return c.viewIndex }

// Calculated reports whether the column has a row function.
func (c *Column) Calculated() bool { return c.rowFunc != nil }

func (c *Column) clone() *Column {
	cp := *c
	return &cp
}

// ToText renders v as text according to the column type. Nil renders as
// the empty string. Values that do not match the type are printed with
// their default format.
func (c *Column) ToText(v any) string {
	if v == nil {
		return ""
	}
	switch c.typ {
	case Integer:
		if n, ok := toInt64(v); ok {
			return strconv.FormatInt(n, 10)
		}
	case Float:
		if f, ok := toFloat64(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case Date:
		if t, ok := v.(time.Time); ok {
			return t.Format(DateLayout)
		}
	case DateTime:
		if t, ok := v.(time.Time); ok {
			return t.Format(DateTimeLayout)
		}
	}
	return formatValue(v)
}

// FromText parses s according to the column type. Empty text yields nil.
func (c *Column) FromText(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	switch c.typ {
	case Integer:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as %s", ErrConversion, s, c.typ)
		}
		return n, nil
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q as %s", ErrConversion, s, c.typ)
		}
		return f, nil
	case Date:
		return parseTime(s, c.typ, dateLayouts)
	case DateTime:
		return parseTime(s, c.typ, dateTimeLayouts)
	default:
		return s, nil
	}
}

func parseTime(s string, typ Type, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q as %s", ErrConversion, s, typ)
}
