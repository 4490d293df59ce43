package exportable_test

import (
	"io"
	"testing"

	"github.com/bjaus/exportable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		ext  string
		want string
	}{
		"plain":        {"csv", "csv"},
		"leading dot":  {".json", "json"},
		"upper case":   {"XLSX", "xlsx"},
		"padded":       {"  md ", "md"},
		"zipped":       {"parquet.zip", "parquet.zip"},
		"zipped upper": {".TSV.ZIP", "tsv.zip"},
		"template":     {"go-template={{.id}}", "txt"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			e, err := exportable.Lookup(tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Extension())
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	t.Parallel()
	for _, ext := range []string{"xml", "", ".zip", "xml.zip"} {
		_, err := exportable.Lookup(ext)
		require.ErrorIs(t, err, exportable.ErrUnknownExtension, ext)
		assert.Contains(t, err.Error(), ext)
	}
}

func TestLookupBadTemplate(t *testing.T) {
	t.Parallel()
	_, err := exportable.Lookup("go-template={{")
	require.ErrorIs(t, err, exportable.ErrInvalidTemplate)
}

func TestExtensions(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{
		"arrow", "csv", "html", "json", "jsonl", "md", "parquet", "tsv", "txt", "xlsx", "yaml",
	}, exportable.Extensions())
}

type shoutExporter struct{}

func (shoutExporter) Extension() string   { return ".SHOUT" }
func (shoutExporter) ContentType() string { return "text/plain" }
func (shoutExporter) Dump(w io.Writer, _ exportable.Table, _ exportable.Hints) error {
	_, err := io.WriteString(w, "HEY\n")
	return err
}

type anonExporter struct{ shoutExporter }

func (anonExporter) Extension() string { return "" }

func TestRegistry(t *testing.T) {
	t.Parallel()
	r, err := exportable.NewRegistry(exportable.CSVExporter{})
	require.NoError(t, err)
	require.NoError(t, r.Register(shoutExporter{}))
	assert.Equal(t, []string{"csv", "shout"}, r.Extensions())

	e, err := r.Lookup("shout")
	require.NoError(t, err)
	assert.Equal(t, shoutExporter{}, e)

	e, err = r.Lookup("shout.zip")
	require.NoError(t, err)
	assert.Equal(t, "shout.zip", e.Extension())

	_, err = r.Lookup("json")
	require.ErrorIs(t, err, exportable.ErrUnknownExtension)
}

func TestRegistryReplaces(t *testing.T) {
	t.Parallel()
	r, err := exportable.NewRegistry(exportable.CSVExporter{})
	require.NoError(t, err)
	require.NoError(t, r.Register(exportable.CSVExporter{Delimiter: ';'}))
	e, err := r.Lookup("csv")
	require.NoError(t, err)
	assert.Equal(t, exportable.CSVExporter{Delimiter: ';'}, e)
}

func TestRegistryErrors(t *testing.T) {
	t.Parallel()
	_, err := exportable.NewRegistry(nil)
	require.ErrorIs(t, err, exportable.ErrConfiguration)

	r, err := exportable.NewRegistry()
	require.NoError(t, err)
	require.ErrorIs(t, r.Register(anonExporter{}), exportable.ErrConfiguration)
	assert.Empty(t, r.Extensions())
}
