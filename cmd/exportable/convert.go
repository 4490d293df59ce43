package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/bjaus/exportable"
	"github.com/bjaus/exportable/internal/config"
	"github.com/bjaus/exportable/internal/logger"
	"github.com/bjaus/exportable/internal/source"
	"github.com/bjaus/exportable/internal/upload"
)

// ErrUsage is returned when the flags name no usable input or output.
var ErrUsage = errors.New("invalid usage")

type convertFlags struct {
	input      string
	driver     string
	dsn        string
	query      string
	format     string
	output     string
	s3Bucket   string
	s3Key      string
	zip        bool
	encoding   string
	bufferSize int
	sortBy     string
	desc       bool
	strict     bool
	metrics    bool
}

// uploader sends a finished export somewhere and reports where it went.
type uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// newUploader is replaced in tests.
var newUploader = func(cfg config.S3) (uploader, error) {
	return upload.NewS3(cfg.Bucket, upload.Options{
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		PathStyle: cfg.PathStyle,
	})
}

func newConvertCmd(root *rootFlags) *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Export a table read from a file or a SQL query",
		Long: `Read a table and stream it out in another format.

The input is a CSV file (header row first), a JSON lines file (.jsonl or
.ndjson, nested objects flattened), CSV on stdin, or the result of --query
against --driver. The format defaults to the output file's extension, then
to the config file. Output goes to a file, into a directory under a
generated name, to stdout ("-"), or to S3 with --s3-bucket.`,
		Example: `  exportable convert -i people.csv -o people.parquet
  exportable convert -i events.jsonl -f 'go-template={{.id}}: {{.name}}'
  exportable convert --driver pgx --dsn "$DATABASE_URL" --query 'SELECT * FROM orders' -f xlsx -o exports/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, root, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "input file (.csv, .jsonl, .ndjson); empty or - reads CSV from stdin")
	flags.StringVar(&f.driver, "driver", "", "database driver: sqlite or pgx")
	flags.StringVar(&f.dsn, "dsn", "", "database connection string")
	flags.StringVarP(&f.query, "query", "q", "", "SQL query whose result is exported")
	flags.StringVarP(&f.format, "format", "f", "", "output format extension or go-template=<template>")
	flags.StringVarP(&f.output, "output", "o", "-", "output file, directory, or - for stdout")
	flags.StringVar(&f.s3Bucket, "s3-bucket", "", "upload to this S3 bucket instead of writing locally")
	flags.StringVar(&f.s3Key, "s3-key", "", "S3 object key (default: generated)")
	flags.BoolVar(&f.zip, "zip", false, "wrap the output in a zip archive")
	flags.StringVar(&f.encoding, "encoding", exportable.DefaultEncoding, "character encoding of text formats")
	flags.IntVar(&f.bufferSize, "buffer-size", exportable.DefaultBufferSize, "chunks buffered between exporter and writer")
	flags.StringVar(&f.sortBy, "sort", "", "sort rows by this column label")
	flags.BoolVar(&f.desc, "desc", false, "sort in descending order")
	flags.BoolVar(&f.strict, "strict", false, "read the whole input before exporting")
	flags.BoolVar(&f.metrics, "metrics", false, "log export metrics when done")
	cmd.MarkFlagsMutuallyExclusive("input", "driver")
	cmd.MarkFlagsMutuallyExclusive("output", "s3-bucket")
	return cmd
}

func runConvert(cmd *cobra.Command, root *rootFlags, f *convertFlags) error {
	cfg, err := config.Load(root.config)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cmd.ErrOrStderr(), logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty || root.pretty})
	if err != nil {
		return err
	}
	log = log.With().Str("run_id", uuid.NewString()).Logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithContext(ctx)

	tbl, closeInput, err := openTable(ctx, cfg, f, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeInput()

	if f.sortBy != "" {
		cmp, err := exportable.ByColumn(tbl, f.sortBy)
		if err != nil {
			return err
		}
		var sortOpts []exportable.SortOption
		if f.desc {
			sortOpts = append(sortOpts, exportable.Descending())
		}
		if tbl, err = exportable.Sorted(tbl, cmp, sortOpts...); err != nil {
			return err
		}
	}

	e, err := exportable.Lookup(cfg.Format)
	if err != nil {
		return err
	}
	if _, zipped := e.(*exportable.ZippedExporter); f.zip && !zipped {
		e = exportable.Zipped(e)
	}
	var reg *prometheus.Registry
	if f.metrics {
		reg = prometheus.NewRegistry()
		if e, err = exportable.Instrument(e, reg); err != nil {
			return err
		}
	}

	log.Debug().Str("format", e.Extension()).Bool("lazy", tbl.Lazy()).Msg("starting export")
	opts := []exportable.Option{
		exportable.WithEncoding(cfg.Encoding),
		exportable.WithBufferSize(cfg.BufferSize),
	}
	start := time.Now()
	dest, err := deliver(ctx, cfg, f, e, tbl, opts, cmd.OutOrStdout())
	if err != nil {
		log.Error().Err(err).Str("format", e.Extension()).Msg("export failed")
		return err
	}
	log.Info().
		Str("format", e.Extension()).
		Str("destination", dest).
		Dur("elapsed", time.Since(start)).
		Msg("export complete")
	if reg != nil {
		logMetrics(log, reg)
	}
	return nil
}

// applyFlags lays explicitly set flags over the configuration. An output
// file extension picks the format when --format is not given.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *convertFlags) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("format"):
		cfg.Format = f.format
	case f.output != "-" && f.s3Bucket == "":
		if ext, ok := registeredExtension(f.output); ok {
			cfg.Format = ext
		}
	case f.s3Key != "":
		if ext, ok := registeredExtension(f.s3Key); ok {
			cfg.Format = ext
		}
	}
	if flags.Changed("encoding") {
		cfg.Encoding = f.encoding
	}
	if flags.Changed("buffer-size") {
		cfg.BufferSize = f.bufferSize
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = f.driver
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = f.dsn
	}
	if flags.Changed("s3-bucket") {
		cfg.S3.Bucket = f.s3Bucket
	} else if flags.Changed("output") {
		cfg.S3.Bucket = ""
	}
}

// registeredExtension finds the longest dotted suffix of path's base name
// that names an exporter, so "report.csv.zip" yields "csv.zip".
func registeredExtension(path string) (string, bool) {
	base := filepath.Base(path)
	for i := strings.IndexByte(base, '.'); i >= 0; {
		ext := base[i+1:]
		if _, err := exportable.Lookup(ext); err == nil {
			return ext, true
		}
		next := strings.IndexByte(ext, '.')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return "", false
}

func openTable(ctx context.Context, cfg config.Config, f *convertFlags, stdin io.Reader) (exportable.Table, func(), error) {
	noop := func() {}
	var opts []exportable.TableOption
	if cfg.Strict {
		opts = append(opts, exportable.Strict())
	}

	if driver := cfg.Database.Driver; driver != "" && f.input == "" {
		if f.query == "" {
			return nil, noop, fmt.Errorf("%w: --driver needs --query", ErrUsage)
		}
		db, err := source.Open(ctx, driver, cfg.Database.DSN)
		if err != nil {
			return nil, noop, err
		}
		tbl, err := source.Query(ctx, db, f.query, opts...)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return tbl, func() { _ = db.Close() }, nil
	}
	if f.query != "" {
		return nil, noop, fmt.Errorf("%w: --query needs --driver", ErrUsage)
	}

	if f.input == "" || f.input == "-" {
		tbl, err := source.CSV(stdin, opts...)
		return tbl, noop, err
	}
	file, err := os.Open(f.input)
	if err != nil {
		return nil, noop, err
	}
	closeFile := func() { _ = file.Close() }
	var tbl exportable.Table
	switch ext := strings.ToLower(filepath.Ext(f.input)); ext {
	case ".csv":
		tbl, err = source.CSV(file, opts...)
	case ".jsonl", ".ndjson":
		tbl, err = source.JSONL(file, opts...)
	default:
		err = fmt.Errorf("%w: unsupported input extension %q", ErrUsage, ext)
	}
	if err != nil {
		closeFile()
		return nil, noop, err
	}
	return tbl, closeFile, nil
}

// deliver streams the export to its destination and describes where it
// went.
func deliver(ctx context.Context, cfg config.Config, f *convertFlags, e exportable.Exporter, t exportable.Table, opts []exportable.Option, stdout io.Writer) (string, error) {
	if cfg.S3.Bucket != "" {
		key := f.s3Key
		if key == "" {
			key = exportable.AttachmentName(e, ksuid.New().String())
		}
		up, err := newUploader(cfg.S3)
		if err != nil {
			return "", err
		}
		opts = append(opts, exportable.WithFilename(stem(key, e)))
		r := exportable.NewReader(ctx, e, t, opts...)
		defer r.Close()
		return up.Upload(ctx, key, e.ContentType(), r)
	}

	if f.output == "" || f.output == "-" {
		return "stdout", writeAll(ctx, stdout, e, t, opts)
	}

	path := f.output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, exportable.AttachmentName(e, ksuid.New().String()))
	}
	opts = append(opts, exportable.WithFilename(stem(path, e)))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	err = writeAll(ctx, file, e, t, opts)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func writeAll(ctx context.Context, w io.Writer, e exportable.Exporter, t exportable.Table, opts []exportable.Option) error {
	for chunk, err := range exportable.DumpIter(ctx, e, t, opts...) {
		if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// stem is the file name of path without the exporter's extension.
func stem(path string, e exportable.Exporter) string {
	base := filepath.Base(path)
	if s, ok := strings.CutSuffix(base, "."+e.Extension()); ok {
		return s
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func logMetrics(log zerolog.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("gather metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev := log.Info().Str("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				ev = ev.Str(lp.GetName(), lp.GetValue())
			}
			if c := m.GetCounter(); c != nil {
				ev = ev.Float64("value", c.GetValue())
			}
			if h := m.GetHistogram(); h != nil {
				ev = ev.Uint64("count", h.GetSampleCount()).Float64("sum", h.GetSampleSum())
			}
			ev.Msg("export metric")
		}
	}
}
