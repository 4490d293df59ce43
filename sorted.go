package exportable

import (
	"fmt"
	"iter"
	"slices"
)

// Compare orders two resolved rows. It returns a negative number when a
// sorts before b, zero when they are equal, and a positive number otherwise.
type Compare func(a, b []any) int

// SortOption configures [Sorted].
type SortOption func(*sortConfig)

type sortConfig struct {
	descending bool
}

// Descending reverses the order. Equal rows keep their original order.
func Descending() SortOption {
	return func(c *sortConfig) { c.descending = true }
}

// SortedTable exposes the rows of a wrapped table in sorted order. All other
// methods delegate to the wrapped table.
type SortedTable struct {
	Table
	cmp        Compare
	descending bool

	// snapshot is the last sorted pass, reused by Row and Column until the
	// column set changes or Rows runs again.
	snapshot     [][]any
	snapshotCols int
}

// Sorted wraps t so that Rows yields rows ordered by cmp. The sort is
// stable. Sorting needs every row, so t is materialized here.
func Sorted(t Table, cmp Compare, opts ...SortOption) (*SortedTable, error) {
	if cmp == nil {
		return nil, fmt.Errorf("%w: nil comparison", ErrConfiguration)
	}
	var cfg sortConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := t.Materialize(); err != nil {
		return nil, err
	}
	return &SortedTable{Table: t, cmp: cmp, descending: cfg.descending}, nil
}

// ByColumn returns a comparison on the values of the column labeled label.
// Nil values sort first.
func ByColumn(t Table, label string) (Compare, error) {
	for _, c := range t.Columns() {
		if c.Label() == label {
			i := c.ViewIndex()
			return func(a, b []any) int { return compareValues(a[i], b[i]) }, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, label)
}

// Rows yields the wrapped table's rows in sorted order. The order is
// recomputed on every call, so columns added later are honored.
func (s *SortedTable) Rows() iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		s.snapshot = nil
		rows, err := s.rows()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, r := range rows {
			if !yield(slices.Clone(r), nil) {
				return
			}
		}
	}
}

// Row returns the i-th row in sorted order. Consecutive calls share one
// sorted pass over the wrapped table.
func (s *SortedTable) Row(i int) ([]any, error) {
	rows, err := s.rows()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, len(rows))
	}
	return slices.Clone(rows[i]), nil
}

// Column returns the column's values in sorted order.
func (s *SortedTable) Column(label string) ([]any, error) {
	i := slices.IndexFunc(s.Columns(), func(c *Column) bool { return c.Label() == label })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, label)
	}
	rows, err := s.rows()
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rows))
	for n, r := range rows {
		out[n] = r[i]
	}
	return out, nil
}

func (s *SortedTable) rows() ([][]any, error) {
	n := len(s.Table.Columns())
	if s.snapshot != nil && s.snapshotCols == n {
		return s.snapshot, nil
	}
	rows, err := s.sorted()
	if err != nil {
		return nil, err
	}
	s.snapshot, s.snapshotCols = rows, n
	return rows, nil
}

func (s *SortedTable) sorted() ([][]any, error) {
	var rows [][]any
	for r, err := range s.Table.Rows() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	cmp := s.cmp
	if s.descending {
		cmp = func(a, b []any) int { return s.cmp(b, a) }
	}
	slices.SortStableFunc(rows, cmp)
	return rows, nil
}
