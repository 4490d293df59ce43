package exportable_test

import (
	"testing"

	"github.com/bjaus/exportable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fooDeclaration() *exportable.Declaration {
	return exportable.Declare().
		Field("icolumn", exportable.IntColumn("")).
		Field("tcolumn", exportable.TextColumn("")).
		Field("dcolumn", exportable.DateTimeColumn(""))
}

func TestDeclarationOrder(t *testing.T) {
	t.Parallel()
	cols := fooDeclaration().Columns()
	assert.Equal(t, []string{"icolumn", "tcolumn", "dcolumn"}, labelsOf(cols))
	assert.Equal(t, exportable.Integer, cols[0].Type())
	assert.Equal(t, exportable.Text, cols[1].Type())
	assert.Equal(t, exportable.DateTime, cols[2].Type())
}

func TestDeclarationInheritance(t *testing.T) {
	t.Parallel()
	bar := exportable.Declare(fooDeclaration()).Field("fcolumn", exportable.FloatColumn(""))
	cols := bar.Columns()
	assert.Equal(t, []string{"icolumn", "tcolumn", "dcolumn", "fcolumn"}, labelsOf(cols))
	assert.Equal(t, exportable.Float, cols[3].Type())
}

func TestDeclarationMultipleParents(t *testing.T) {
	t.Parallel()
	a := exportable.Declare().Field("a", exportable.IntColumn(""))
	b := exportable.Declare().Field("b", exportable.IntColumn(""))
	c := exportable.Declare(a, b).Field("c", exportable.IntColumn(""))
	assert.Equal(t, []string{"a", "b", "c"}, labelsOf(c.Columns()))
}

func TestDeclarationOverride(t *testing.T) {
	t.Parallel()
	child := exportable.Declare(fooDeclaration()).
		Field("extra", exportable.IntColumn("")).
		Field("icolumn", exportable.TextColumn(""))
	cols := child.Columns()
	assert.Equal(t, []string{"tcolumn", "dcolumn", "extra", "icolumn"}, labelsOf(cols))
	assert.Equal(t, exportable.Text, cols[3].Type())
}

func TestDeclarationExplicitLabel(t *testing.T) {
	t.Parallel()
	d := exportable.Declare().Field("amount", exportable.FloatColumn("amount_eur", exportable.WithVerboseName("Amount (EUR)")))
	cols := d.Columns()
	assert.Equal(t, "amount_eur", cols[0].Label())
	assert.Equal(t, "Amount (EUR)", cols[0].VerboseName())
}

func TestDeclarationDoesNotMutateColumns(t *testing.T) {
	t.Parallel()
	col := exportable.IntColumn("")
	exportable.Declare().Field("n", col).Columns()
	assert.Empty(t, col.Label())
}

func TestDeclaredCalculatedColumn(t *testing.T) {
	t.Parallel()
	d := exportable.Declare().
		Field("a1", exportable.IntColumn("")).
		Field("a2", exportable.IntColumn("")).
		Field("sum", exportable.IntColumn("", exportable.WithRowFunc(sumRow)))

	tbl, err := d.ListTable(exportable.FromSlice([][]any{{1, 2}, {3, 4}}))
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1, 2, 3}, {3, 4, 7}}, collect(t, tbl))
}

func TestDeclaredDictTable(t *testing.T) {
	t.Parallel()
	d := exportable.Declare().
		Field("name", exportable.TextColumn("")).
		Field("age", exportable.IntColumn(""))
	tbl, err := d.DictTable(exportable.FromSlice([]map[string]any{{"name": "Ann", "age": 3}}), exportable.Strict())
	require.NoError(t, err)
	row, err := tbl.Row(0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Ann", 3}, row)
}

func TestDeclaredNilColumn(t *testing.T) {
	t.Parallel()
	d := exportable.Declare().Field("broken", nil)
	_, err := d.ListTable(exportable.FromSlice([][]any{}))
	require.ErrorIs(t, err, exportable.ErrConfiguration)
}
