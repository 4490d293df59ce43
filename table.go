package exportable

import (
	"fmt"
	"iter"
	"slices"
)

// Table is a sequence of rows exposed through typed columns.
//
// A lazy table wraps a single-pass row producer: Rows may be ranged over
// once, and Row and Column fail with [ErrLazyAccess]. Materialize reads the
// producer into memory and makes the table strict, after which every read is
// repeatable. Tables are not safe for concurrent use.
type Table interface {
	// Columns returns the exposed columns in view-index order.
	Columns() []*Column
	// Rows yields one value per exposed column for each raw row. A row that
	// cannot be resolved yields a *RowError and ends the sequence.
	Rows() iter.Seq2[[]any, error]
	// Row returns the resolved row at index i. Strict tables only.
	Row(i int) ([]any, error)
	// Column returns every value of the column labeled label. Strict
	// tables only.
	Column(label string) ([]any, error)
	// Materialize converts a lazy table into a strict one. It is a no-op on
	// a strict table.
	Materialize() error
	// Lazy reports whether the table is still backed by a single-pass
	// producer.
	Lazy() bool
	// SizeHint returns a best-effort row count. The boolean is false when
	// the count is unknown.
	SizeHint() (int, bool)
	// AddColumn exposes one more raw field after the existing columns.
	AddColumn(c *Column) error
}

// TableOption configures a table at construction.
type TableOption func(*tableConfig)

type tableConfig struct {
	strict       bool
	sizeHint     int
	hasSizeHint  bool
	allowMissing bool
}

// Strict materializes the row source at construction. Default: lazy.
func Strict() TableOption {
	return func(c *tableConfig) { c.strict = true }
}

// WithSizeHint overrides the size hint derived from the row source.
func WithSizeHint(n int) TableOption {
	return func(c *tableConfig) {
		c.sizeHint = n
		c.hasSizeHint = true
	}
}

// AllowMissing makes a [DictTable] expose nil for absent keys instead of
// failing with [ErrMissingField].
func AllowMissing() TableOption {
	return func(c *tableConfig) { c.allowMissing = true }
}

type valueFunc[R any] func(row R, c *Column) (any, error)

type table[R any] struct {
	columns     []*Column
	nextIndex   int
	source      Source[R]
	rows        []R
	lazy        bool
	consumed    bool
	failed      error
	sizeHint    int
	hasSizeHint bool
	value       valueFunc[R]
}

func newTable[R any](src Source[R], slots []Slot, value valueFunc[R], cfg tableConfig) (*table[R], error) {
	t := &table[R]{
		source:      src,
		lazy:        true,
		sizeHint:    cfg.sizeHint,
		hasSizeHint: cfg.hasSizeHint,
		value:       value,
	}
	if !t.hasSizeHint {
		t.sizeHint, t.hasSizeHint = src.Len()
	}
	for _, s := range slots {
		if err := t.addSlot(s); err != nil {
			return nil, err
		}
	}
	if cfg.strict {
		if err := t.Materialize(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *table[R]) addSlot(s Slot) error {
	switch s := s.(type) {
	case skip:
		t.nextIndex++
		return nil
	case *Column:
		if s == nil {
			return fmt.Errorf("%w: nil column at raw index %d", ErrConfiguration, t.nextIndex)
		}
		if s.label == "" {
			return fmt.Errorf("%w: column at raw index %d has no label", ErrConfiguration, t.nextIndex)
		}
		for _, c := range t.columns {
			if c.label == s.label {
				return fmt.Errorf("%w: duplicate label %q", ErrConfiguration, s.label)
			}
		}
		c := s.clone()
		c.index = t.nextIndex
		c.viewIndex = len(t.columns)
		t.nextIndex++
		t.columns = append(t.columns, c)
		return nil
	default:
		return fmt.Errorf("%w: unsupported slot %T at raw index %d", ErrConfiguration, s, t.nextIndex)
	}
}

func (t *table[R]) Columns() []*Column {
	return slices.Clone(t.columns)
}

func (t *table[R]) Lazy() bool { return t.lazy }

func (t *table[R]) SizeHint() (int, bool) { return t.sizeHint, t.hasSizeHint }

func (t *table[R]) AddColumn(c *Column) error {
	return t.addSlot(c)
}

func (t *table[R]) Materialize() error {
	if !t.lazy {
		return nil
	}
	if err := t.consumedErr(); err != nil {
		return err
	}
	t.consumed = true
	var rows []R
	if t.source.seq == nil {
		rows = slices.Clone(t.source.rows)
	} else {
		for r, err := range t.source.seq {
			if err != nil {
				t.failed = &RowError{Row: len(rows), Err: err}
				return t.failed
			}
			rows = append(rows, r)
		}
	}
	t.rows = rows
	t.lazy = false
	t.source = Source[R]{}
	if !t.hasSizeHint {
		t.sizeHint, t.hasSizeHint = len(rows), true
	}
	return nil
}

func (t *table[R]) Rows() iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		raw, err := t.rawRows()
		if err != nil {
			yield(nil, err)
			return
		}
		cols := t.columns
		n := 0
		for r, err := range raw {
			if err != nil {
				t.failed = &RowError{Row: n, Err: err}
				yield(nil, t.failed)
				return
			}
			vals, err := t.resolve(r, cols)
			if err != nil {
				yield(nil, &RowError{Row: n, Err: err})
				return
			}
			if !yield(vals, nil) {
				return
			}
			n++
		}
	}
}

func (t *table[R]) rawRows() (iter.Seq2[R, error], error) {
	if !t.lazy {
		return func(yield func(R, error) bool) {
			for _, r := range t.rows {
				if !yield(r, nil) {
					return
				}
			}
		}, nil
	}
	if err := t.consumedErr(); err != nil {
		return nil, err
	}
	t.consumed = true
	return t.source.all(), nil
}

// consumedErr reports why a lazy table can no longer be read. A source that
// failed keeps reporting its first error.
func (t *table[R]) consumedErr() error {
	if t.failed != nil {
		return t.failed
	}
	if t.consumed {
		return fmt.Errorf("%w: rows already consumed", ErrLazyAccess)
	}
	return nil
}

func (t *table[R]) Row(i int) ([]any, error) {
	if t.lazy {
		return nil, fmt.Errorf("%w: row %d", ErrLazyAccess, i)
	}
	if i < 0 || i >= len(t.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, len(t.rows))
	}
	vals, err := t.resolve(t.rows[i], t.columns)
	if err != nil {
		return nil, &RowError{Row: i, Err: err}
	}
	return vals, nil
}

func (t *table[R]) Column(label string) ([]any, error) {
	if t.lazy {
		return nil, fmt.Errorf("%w: column %q", ErrLazyAccess, label)
	}
	i := slices.IndexFunc(t.columns, func(c *Column) bool { return c.label == label })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, label)
	}
	c := t.columns[i]
	out := make([]any, len(t.rows))
	for n, r := range t.rows {
		v, err := t.cell(r, c)
		if err != nil {
			return nil, &RowError{Row: n, Err: err}
		}
		out[n] = v
	}
	return out, nil
}

func (t *table[R]) resolve(row R, cols []*Column) ([]any, error) {
	vals := make([]any, len(cols))
	for i, c := range cols {
		v, err := t.cell(row, c)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (t *table[R]) cell(row R, c *Column) (any, error) {
	if c.rowFunc != nil {
		v, err := c.rowFunc(row)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.label, err)
		}
		return v, nil
	}
	v, err := t.value(row, c)
	if err != nil {
		return nil, err
	}
	if c.cellFunc != nil {
		if v, err = c.cellFunc(v); err != nil {
			return nil, fmt.Errorf("column %q: %w", c.label, err)
		}
	}
	return v, nil
}

// ListTable is a table whose raw rows are positional. A column reads the
// raw field at its raw index.
type ListTable struct {
	*table[[]any]
}

// NewListTable builds a table over positional rows. Use [Skip] in slots to
// leave a raw field unexposed.
func NewListTable(src Source[[]any], slots []Slot, opts ...TableOption) (*ListTable, error) {
	t, err := newTable(src, slots, listValue, newTableConfig(opts))
	if err != nil {
		return nil, err
	}
	return &ListTable{t}, nil
}

func listValue(row []any, c *Column) (any, error) {
	if c.index >= len(row) {
		return nil, fmt.Errorf("%w: column %q reads field %d of a %d-field row", ErrIndexOutOfRange, c.label, c.index, len(row))
	}
	return row[c.index], nil
}

// DictTable is a table whose raw rows are keyed by column label.
type DictTable struct {
	*table[map[string]any]
}

// NewDictTable builds a table over keyed rows. An absent key fails the row
// with [ErrMissingField] unless [AllowMissing] is given.
func NewDictTable(src Source[map[string]any], columns []*Column, opts ...TableOption) (*DictTable, error) {
	cfg := newTableConfig(opts)
	slots := make([]Slot, len(columns))
	for i, c := range columns {
		slots[i] = c
	}
	t, err := newTable(src, slots, dictValue(cfg.allowMissing), cfg)
	if err != nil {
		return nil, err
	}
	return &DictTable{t}, nil
}

func dictValue(allowMissing bool) valueFunc[map[string]any] {
	return func(row map[string]any, c *Column) (any, error) {
		v, ok := row[c.label]
		if !ok && !allowMissing {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, c.label)
		}
		return v, nil
	}
}

func newTableConfig(opts []TableOption) tableConfig {
	var cfg tableConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

var (
	_ Table = (*ListTable)(nil)
	_ Table = (*DictTable)(nil)
)
