package exportable

import "slices"

// Declaration is an ordered registry of named columns from which tables are
// built. Fields are ordered by registration; fields of parent declarations
// come first, in the order the parents are given.
//
//	base := exportable.Declare().Field("id", exportable.IntColumn(""))
//	people := exportable.Declare(base).Field("name", exportable.TextColumn(""))
//	t, err := people.ListTable(exportable.FromSlice(rows))
//
// A column with an empty label takes the field name as its label.
// Registering a name that is already present, directly or through a parent,
// replaces the earlier field and moves it to the new position.
type Declaration struct {
	parents []*Declaration
	fields  []declaredField
	order   int
}

type declaredField struct {
	name   string
	column *Column
	order  int
}

// Declare starts a declaration that inherits the fields of parents.
func Declare(parents ...*Declaration) *Declaration {
	return &Declaration{parents: slices.Clone(parents)}
}

// Field registers a named column and returns d for chaining.
func (d *Declaration) Field(name string, c *Column) *Declaration {
	d.fields = append(d.fields, declaredField{name: name, column: c, order: d.order})
	d.order++
	return d
}

// Columns returns the declared columns in declaration order. Each column is
// a copy, labeled with its field name when it had no label.
func (d *Declaration) Columns() []*Column {
	fields := d.flatten()
	out := make([]*Column, 0, len(fields))
	for _, f := range fields {
		if f.column == nil {
			out = append(out, nil)
			continue
		}
		c := f.column.clone()
		if c.label == "" {
			c.label = f.name
		}
		out = append(out, c)
	}
	return out
}

func (d *Declaration) flatten() []declaredField {
	var all []declaredField
	for _, p := range d.parents {
		if p != nil {
			all = append(all, p.flatten()...)
		}
	}
	own := slices.Clone(d.fields)
	slices.SortStableFunc(own, func(a, b declaredField) int { return a.order - b.order })
	all = append(all, own...)

	// Later registrations of a name win and take the later position.
	out := make([]declaredField, 0, len(all))
	for i, f := range all {
		if !slices.ContainsFunc(all[i+1:], func(g declaredField) bool { return g.name == f.name }) {
			out = append(out, f)
		}
	}
	return out
}

// ListTable builds a [ListTable] whose raw rows hold one field per declared
// column, in declaration order.
func (d *Declaration) ListTable(src Source[[]any], opts ...TableOption) (*ListTable, error) {
	cols := d.Columns()
	slots := make([]Slot, len(cols))
	for i, c := range cols {
		slots[i] = c
	}
	return NewListTable(src, slots, opts...)
}

// DictTable builds a [DictTable] keyed by the declared labels.
func (d *Declaration) DictTable(src Source[map[string]any], opts ...TableOption) (*DictTable, error) {
	return NewDictTable(src, d.Columns(), opts...)
}
