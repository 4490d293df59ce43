package main

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/exportable"
	"github.com/bjaus/exportable/internal/config"
	"github.com/bjaus/exportable/internal/source"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// logLines decodes the JSON log lines written to stderr.
func logLines(t *testing.T, stderr string) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(strings.NewReader(stderr))
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), sc.Text())
		out = append(out, entry)
	}
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const peopleCSV = "name,age\nAnn,31\nBen,7\n"

// ============================================================
// formats
// ============================================================

func TestFormats(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, "", "formats")
	require.NoError(t, err)
	assert.Contains(t, out, "Extension")
	assert.Contains(t, out, "application/vnd.apache.parquet")
}

func TestFormatsAsCSV(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, "", "formats", "--as", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "extension,content_type,buffers\n"), out)
	assert.Contains(t, out, "md,text/markdown,yes\n")
	assert.Contains(t, out, "csv,text/csv,no\n")
}

func TestVersion(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "exportable "+Version)
}

// ============================================================
// convert
// ============================================================

func TestConvertStdin(t *testing.T) {
	t.Parallel()
	out, stderr, err := run(t, peopleCSV, "convert", "-f", "json")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Ann","age":"31"},{"name":"Ben","age":"7"}]`+"\n", out)

	logs := logLines(t, stderr)
	require.NotEmpty(t, logs)
	last := logs[len(logs)-1]
	assert.Equal(t, "export complete", last["message"])
	assert.Equal(t, "stdout", last["destination"])
	assert.Equal(t, "json", last["format"])
	assert.NotEmpty(t, last["run_id"])
}

func TestConvertDefaultFormat(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, peopleCSV, "convert")
	require.NoError(t, err)
	assert.Equal(t, peopleCSV, out)
}

func TestConvertSorted(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, peopleCSV, "convert", "--sort", "name", "--desc")
	require.NoError(t, err)
	assert.Equal(t, "name,age\nBen,7\nAnn,31\n", out)
}

func TestConvertJSONLToInferredFormat(t *testing.T) {
	t.Parallel()
	in := writeFile(t, "people.jsonl", `{"name":"Ann","age":31}`+"\n"+`{"name":"Ben","age":7}`+"\n")
	outPath := filepath.Join(t.TempDir(), "people.md")

	_, _, err := run(t, "", "convert", "-i", in, "-o", outPath, "--strict")
	require.NoError(t, err)
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "| age | name |\n| --: | ---- |\n|  31 | Ann  |\n|   7 | Ben  |\n", string(got))
}

func TestConvertDirectoryOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, stderr, err := run(t, peopleCSV, "convert", "-f", "parquet", "-o", dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasSuffix(name, ".parquet"), name)
	assert.Len(t, strings.TrimSuffix(name, ".parquet"), 27)

	logs := logLines(t, stderr)
	assert.Equal(t, filepath.Join(dir, name), logs[len(logs)-1]["destination"])
}

func TestConvertZip(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		args  []string
		file  string
		entry string
	}{
		"inferred":  {file: "out.csv.zip", entry: "out.csv"},
		"zip flag":  {args: []string{"--zip", "-f", "tsv"}, file: "x.zip", entry: "x.tsv"},
		"no double": {args: []string{"--zip"}, file: "y.json.zip", entry: "y.json"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			outPath := filepath.Join(t.TempDir(), tt.file)
			args := append([]string{"convert", "-o", outPath}, tt.args...)
			_, _, err := run(t, peopleCSV, args...)
			require.NoError(t, err)

			zr, err := zip.OpenReader(outPath)
			require.NoError(t, err)
			defer zr.Close()
			require.Len(t, zr.File, 1)
			assert.Equal(t, tt.entry, zr.File[0].Name)
		})
	}
}

func TestConvertSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "app.db")
	db, err := source.Open(ctx, "sqlite", dsn)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `CREATE TABLE users (id INTEGER, email TEXT); INSERT INTO users VALUES (2, 'b@x.io'), (1, 'a@x.io');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, _, err := run(t, "", "convert", "--driver", "sqlite", "--dsn", dsn,
		"--query", "SELECT id, email FROM users", "--sort", "id", "-f", "jsonl")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"email":"a@x.io"}`+"\n"+`{"id":2,"email":"b@x.io"}`+"\n", out)
}

func TestConvertEncoding(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, "name\ncafé\n", "convert", "--encoding", "latin1", "--buffer-size", "1")
	require.NoError(t, err)
	assert.Equal(t, "name\ncaf\xe9\n", out)
}

func TestConvertTemplate(t *testing.T) {
	t.Parallel()
	out, _, err := run(t, peopleCSV, "convert", "-f", "go-template={{.name}} is {{.age}}")
	require.NoError(t, err)
	assert.Equal(t, "Ann is 31\nBen is 7\n", out)
}

func TestConvertMetrics(t *testing.T) {
	t.Parallel()
	_, stderr, err := run(t, peopleCSV, "convert", "--metrics")
	require.NoError(t, err)

	var found bool
	for _, entry := range logLines(t, stderr) {
		if entry["metric"] == exportable.MetricExports {
			found = true
			assert.Equal(t, "success", entry["outcome"])
			assert.EqualValues(t, 1, entry["value"])
		}
	}
	assert.True(t, found, stderr)
}

func TestConvertConfigFile(t *testing.T) {
	t.Parallel()
	cfg := writeFile(t, "exportable.yaml", "format: tsv\nlog:\n  level: warn\n")
	out, stderr, err := run(t, peopleCSV, "convert", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "name\tage\nAnn\t31\nBen\t7\n", out)
	assert.Empty(t, stderr)

	out, _, err = run(t, peopleCSV, "convert", "--config", cfg, "-f", "csv")
	require.NoError(t, err)
	assert.Equal(t, peopleCSV, out)
}

type fakeUploader struct {
	key, contentType string
	body             []byte
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.body = key, contentType, b
	return "s3://bucket/" + key, nil
}

func TestConvertS3(t *testing.T) {
	fake := &fakeUploader{}
	var got config.S3
	orig := newUploader
	newUploader = func(cfg config.S3) (uploader, error) {
		got = cfg
		return fake, nil
	}
	t.Cleanup(func() { newUploader = orig })

	_, stderr, err := run(t, peopleCSV, "convert", "--s3-bucket", "exports", "--s3-key", "daily/people.tsv")
	require.NoError(t, err)
	assert.Equal(t, "exports", got.Bucket)
	assert.Equal(t, "daily/people.tsv", fake.key)
	assert.Equal(t, "text/tab-separated-values", fake.contentType)
	assert.Equal(t, "name\tage\nAnn\t31\nBen\t7\n", string(fake.body))

	logs := logLines(t, stderr)
	assert.Equal(t, "s3://bucket/daily/people.tsv", logs[len(logs)-1]["destination"])
}

func TestConvertS3GeneratedKey(t *testing.T) {
	fake := &fakeUploader{}
	orig := newUploader
	newUploader = func(config.S3) (uploader, error) { return fake, nil }
	t.Cleanup(func() { newUploader = orig })

	_, _, err := run(t, peopleCSV, "convert", "--s3-bucket", "exports", "-f", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fake.key, ".json"), fake.key)
	assert.Equal(t, "application/json", fake.contentType)
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()
	xml := writeFile(t, "data.xml", "<x/>")
	tests := map[string]struct {
		args []string
		is   error
	}{
		"unknown format":      {args: []string{"-f", "xml"}, is: exportable.ErrUnknownExtension},
		"unknown input":       {args: []string{"-i", xml}, is: ErrUsage},
		"query without drv":   {args: []string{"--query", "SELECT 1"}, is: ErrUsage},
		"driver without qry":  {args: []string{"--driver", "sqlite", "--dsn", ":memory:"}, is: ErrUsage},
		"bad encoding":        {args: []string{"--encoding", "klingon"}, is: config.ErrInvalid},
		"bad buffer size":     {args: []string{"--buffer-size", "0"}, is: config.ErrInvalid},
		"unknown sort column": {args: []string{"--sort", "height"}, is: exportable.ErrUnknownColumn},
		"missing input":       {args: []string{"-i", filepath.Join(t.TempDir(), "nope.csv")}, is: os.ErrNotExist},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := run(t, peopleCSV, append([]string{"convert"}, tt.args...)...)
			require.ErrorIs(t, err, tt.is)
		})
	}
}

func TestConvertExclusiveFlags(t *testing.T) {
	t.Parallel()
	_, _, err := run(t, "", "convert", "-i", "a.csv", "--driver", "sqlite")
	require.Error(t, err)
}

func TestConvertRemovesPartialFile(t *testing.T) {
	t.Parallel()
	in := writeFile(t, "bad.csv", "a,b\n1,2\n3\n")
	outPath := filepath.Join(t.TempDir(), "out.csv")
	_, _, err := run(t, "", "convert", "-i", in, "-o", outPath)
	require.Error(t, err)
	_, statErr := os.Stat(outPath)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

// ============================================================
// helpers
// ============================================================

func TestRegisteredExtension(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		ext string
		ok  bool
	}{
		"report.csv":          {"csv", true},
		"dir/report.csv.zip":  {"csv.zip", true},
		"data.2024.PARQUET":   {"PARQUET", true},
		"notes.txt.bak":       {"", false},
		"noext":               {"", false},
		"archive.tar.gz":      {"", false},
		"/tmp/people.v2.json": {"json", true},
	}
	for path, tt := range tests {
		ext, ok := registeredExtension(path)
		assert.Equal(t, tt.ok, ok, path)
		assert.Equal(t, tt.ext, ext, path)
	}
}

func TestStem(t *testing.T) {
	t.Parallel()
	csv := exportable.CSVExporter{}
	assert.Equal(t, "report", stem("out/report.csv", csv))
	assert.Equal(t, "report", stem("report.csv.zip", exportable.Zipped(csv)))
	assert.Equal(t, "report", stem("report.zip", exportable.Zipped(csv)))
	assert.Equal(t, "report", stem("report.dat", csv))
}
