// Package source builds exportable tables from the inputs the command
// accepts: CSV files, JSON lines, and SQL queries.
package source

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/danthegoodman1/gojsonutils"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/bjaus/exportable"
)

var (
	ErrEmptyInput    = errors.New("input has no header")
	ErrNotObject     = errors.New("line is not a JSON object")
	ErrUnknownDriver = errors.New("unknown database driver")
)

// CSV returns a lazy table over r. The first record names the columns,
// which are all text. r must stay open until the table has been read.
func CSV(r io.Reader, opts ...exportable.TableOption) (*exportable.ListTable, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	slots := make([]exportable.Slot, len(header))
	for i, label := range header {
		slots[i] = exportable.TextColumn(label)
	}
	src := exportable.FromSeq2(func(yield func([]any, error) bool) {
		for {
			rec, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			row := make([]any, len(rec))
			for i, v := range rec {
				row[i] = v
			}
			if !yield(row, nil) {
				return
			}
		}
	})
	return exportable.NewListTable(src, slots, opts...)
}

// JSONL returns a lazy table over a stream of JSON objects. Nested objects
// are flattened to dotted keys. The first object fixes the columns in key
// order; later objects may omit keys and their extra keys are ignored.
func JSONL(r io.Reader, opts ...exportable.TableOption) (*exportable.DictTable, error) {
	dec := json.NewDecoder(r)
	first, err := nextObject(dec)
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	cols := make([]*exportable.Column, len(keys))
	for i, k := range keys {
		cols[i] = exportable.NewColumn(k, jsonType(first[k]))
	}

	src := exportable.FromSeq2(func(yield func(map[string]any, error) bool) {
		if !yield(first, nil) {
			return
		}
		for {
			obj, err := nextObject(dec)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(obj, nil) {
				return
			}
		}
	})
	return exportable.NewDictTable(src, cols, append([]exportable.TableOption{exportable.AllowMissing()}, opts...)...)
}

func nextObject(dec *json.Decoder) (map[string]any, error) {
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode json line: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, raw)
	}
	flat, err := gojsonutils.Flatten(obj, nil)
	if err != nil {
		return nil, fmt.Errorf("flatten json: %w", err)
	}
	flatMap, ok := flat.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: flattened to %T", ErrNotObject, flat)
	}
	return flatMap, nil
}

func jsonType(v any) exportable.Type {
	if _, ok := v.(float64); ok {
		return exportable.Float
	}
	return exportable.Text
}

var drivers = map[string]string{
	"sqlite": "sqlite",
	"pgx":    "pgx",
}

// Open opens a database for one of the supported drivers and checks the
// connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	name, ok := drivers[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// Query runs query and returns its result as a lazy table.
func Query(ctx context.Context, db *sql.DB, query string, opts ...exportable.TableOption) (*exportable.DictTable, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return exportable.NewSQLTable(rows, opts...)
}
