package exportable

import (
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultBatchRows is the number of rows per Arrow record batch.
const DefaultBatchRows = 1024

// ArrowExporter writes the Arrow IPC stream format. Fields are named after
// column labels and typed after column types; every field is nullable.
type ArrowExporter struct {
	// BatchRows is the number of rows per record batch.
	// Default: DefaultBatchRows.
	BatchRows int
}

func (ArrowExporter) Extension() string   { return "arrow" }
func (ArrowExporter) ContentType() string { return "application/vnd.apache.arrow.stream" }

func (e ArrowExporter) Dump(w io.Writer, t Table, _ Hints) error {
	cols := t.Columns()
	schema := arrowSchema(cols)
	mem := memory.NewGoAllocator()
	iw := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	err := writeBatches(mem, t, cols, schema, e.BatchRows, iw.Write)
	if cerr := iw.Close(); err == nil {
		err = cerr
	}
	return err
}

func arrowSchema(cols []*Column) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Label(), Type: arrowType(c.Type()), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t Type) arrow.DataType {
	switch t {
	case Integer:
		return arrow.PrimitiveTypes.Int64
	case Float:
		return arrow.PrimitiveTypes.Float64
	case Date:
		return arrow.FixedWidthTypes.Date32
	case DateTime:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	default:
		return arrow.BinaryTypes.String
	}
}

// writeBatches resolves the rows of t into record batches of at most
// batchRows rows and passes each to write.
func writeBatches(mem memory.Allocator, t Table, cols []*Column, schema *arrow.Schema, batchRows int, write func(arrow.Record) error) error {
	if batchRows < 1 {
		batchRows = DefaultBatchRows
	}
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	flush := func() error {
		rec := b.NewRecord()
		defer rec.Release()
		return write(rec)
	}

	n := 0
	for row, err := range t.Rows() {
		if err != nil {
			return err
		}
		for i, c := range cols {
			if err := appendArrowValue(b.Field(i), c, row[i]); err != nil {
				return &RowError{Row: n, Err: err}
			}
		}
		if n++; n%batchRows == 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if n%batchRows != 0 {
		return flush()
	}
	return nil
}

func appendArrowValue(b array.Builder, c *Column, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.Int64Builder:
		n, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("%w: %T in %s column %q", ErrConversion, v, c.Type(), c.Label())
		}
		b.Append(n)
	case *array.Float64Builder:
		f, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T in %s column %q", ErrConversion, v, c.Type(), c.Label())
		}
		b.Append(f)
	case *array.Date32Builder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %T in %s column %q", ErrConversion, v, c.Type(), c.Label())
		}
		b.Append(arrow.Date32FromTime(t))
	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %T in %s column %q", ErrConversion, v, c.Type(), c.Label())
		}
		b.Append(arrow.Timestamp(t.UnixMicro()))
	case *array.StringBuilder:
		b.Append(c.ToText(v))
	default:
		return fmt.Errorf("%w: unsupported arrow builder %T", ErrConversion, b)
	}
	return nil
}
