package exportable

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetExporter writes a Snappy-compressed Parquet file with the same
// schema as [ArrowExporter]. The footer is written last, so the output is
// only readable once Dump returns.
type ParquetExporter struct {
	// BatchRows is the number of rows buffered per write.
	// Default: DefaultBatchRows.
	BatchRows int
}

func (ParquetExporter) Extension() string   { return "parquet" }
func (ParquetExporter) ContentType() string { return "application/vnd.apache.parquet" }

func (e ParquetExporter) Dump(w io.Writer, t Table, _ Hints) error {
	cols := t.Columns()
	schema := arrowSchema(cols)
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	fw, err := newParquetWriter(schema, w, props, arrowProps)
	if err != nil {
		return err
	}
	err = writeBatches(memory.NewGoAllocator(), t, cols, schema, e.BatchRows, fw.Write)
	if cerr := fw.Close(); err == nil {
		err = cerr
	}
	return err
}

// newParquetWriter starts a file on w. The writer closes sinks that
// implement io.Closer, so w is wrapped to hide Close, and it panics when the
// leading magic bytes cannot be written.
func newParquetWriter(schema *arrow.Schema, w io.Writer, props *parquet.WriterProperties, arrowProps pqarrow.ArrowWriterProperties) (fw *pqarrow.FileWriter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("start parquet file: %v", r)
		}
	}()
	return pqarrow.NewFileWriter(schema, struct{ io.Writer }{w}, props, arrowProps)
}
