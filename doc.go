// Package exportable models tabular data behind one interface and exports it
// to many file formats.
//
// # Tables
//
// A [Table] exposes typed [Column]s over a row source. [ListTable] reads
// positional rows, [DictTable] reads rows keyed by label:
//
//	t, err := exportable.NewListTable(
//		exportable.FromSlice(rows),
//		[]exportable.Slot{exportable.Skip, exportable.IntColumn("age")},
//	)
//
// Every declared slot consumes a raw index; only columns receive a view
// index. [Skip] leaves a raw field unexposed while keeping later columns
// aligned with their raw fields.
//
// Tables are lazy by default: rows may be ranged over once, and random
// access fails with [ErrLazyAccess]. [Table.Materialize] (or the [Strict]
// option) reads the source into memory, after which every read is
// repeatable. [Sorted] orders a materialized table, and [Declare] builds
// column lists from named, ordered fields.
//
// # Exporters
//
// An [Exporter] writes a table to an [io.Writer]. The central entry points
// are [Dump], [Dumps], and [DumpIter]:
//
//	e, err := exportable.Lookup("csv")
//	for chunk, err := range exportable.DumpIter(ctx, e, t) {
//		...
//	}
//
// DumpIter runs the exporter on its own goroutine and hands written chunks
// through a bounded buffer, so a slow consumer blocks the exporter instead
// of growing memory. An exporter failure is yielded as the final error,
// wrapping [ErrProducer]. [NewReader] adapts the same stream to an
// [io.ReadCloser].
//
// Registered extensions are csv, tsv, json, jsonl, yaml, md, html, txt,
// xlsx, parquet, and arrow. "go-template=<tmpl>" renders each row with a
// Go [text/template], and "<ext>.zip" wraps any format in a zip archive.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrConfiguration]: invalid columns at construction
//   - [ErrLazyAccess]: indexed or repeated access on a lazy table
//   - [ErrMissingField]: a keyed row lacks a column's label
//   - [ErrProducer]: the exporter behind DumpIter failed
//   - [ErrUnknownExtension]: no exporter for an extension
//
// Failures tied to one row are reported as a [*RowError].
package exportable
