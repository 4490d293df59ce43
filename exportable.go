package exportable

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors for programmatic error handling.
var (
	ErrConfiguration       = errors.New("invalid table configuration")
	ErrLazyAccess          = errors.New("indexed or repeated access on a lazy table")
	ErrMissingField        = errors.New("missing field")
	ErrProducer            = errors.New("export producer failed")
	ErrUnknownExtension    = errors.New("unknown extension")
	ErrStreamClosed        = errors.New("stream closed")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrUnknownColumn       = errors.New("unknown column")
	ErrConversion          = errors.New("cannot convert value")
	ErrInvalidTemplate     = errors.New("invalid template")
)

// RowError reports a failure while resolving a single row. Rows are
// numbered from zero in the order the row source produced them.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

const (
	// DefaultBufferSize is the number of chunks [DumpIter] buffers between
	// the exporter and the consumer.
	DefaultBufferSize = 20
	// DefaultEncoding is the text encoding used when no hint is given.
	DefaultEncoding = "utf-8"
	// DefaultFilename names archive entries and attachments when no
	// filename hint is given.
	DefaultFilename = "table"
)

// Exporter writes a table to a byte sink.
//
// Dump must write column headers before any row when the format has them,
// and must write rows in the order [Table.Rows] produces them. Exporters that
// need random access call [Table.Materialize] before reading.
type Exporter interface {
	Extension() string
	ContentType() string
	Dump(w io.Writer, t Table, h Hints) error
}

// StrictExporter is implemented by exporters that need random access or
// several passes over the rows. [Dump], [Dumps], and [DumpIter] materialize
// the table before handing it to such an exporter.
type StrictExporter interface {
	Exporter
	RequiresStrict() bool
}

// Hints carries optional, format-dependent export parameters.
type Hints struct {
	// Filename is the base name (without extension) of the exported file.
	Filename string
	// Encoding names the text encoding of the output. Empty means UTF-8.
	// Binary formats ignore it.
	Encoding string
}

// Option configures Dump, Dumps, DumpIter, and NewReader.
type Option func(*options)

type options struct {
	hints      Hints
	bufferSize int
}

// WithFilename sets the filename hint.
func WithFilename(name string) Option {
	return func(o *options) { o.hints.Filename = name }
}

// WithEncoding sets the encoding hint, e.g. "latin1" or "windows-1252".
func WithEncoding(enc string) Option {
	return func(o *options) { o.hints.Encoding = enc }
}

// WithBufferSize sets how many chunks DumpIter buffers. Values below one
// fall back to [DefaultBufferSize].
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

func newOptions(opts []Option) options {
	o := options{bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bufferSize < 1 {
		o.bufferSize = DefaultBufferSize
	}
	return o
}

// Dump exports t to w.
func Dump(w io.Writer, e Exporter, t Table, opts ...Option) error {
	o := newOptions(opts)
	return dump(w, e, t, o.hints)
}

func dump(w io.Writer, e Exporter, t Table, h Hints) error {
	if s, ok := e.(StrictExporter); ok && s.RequiresStrict() {
		if err := t.Materialize(); err != nil {
			return err
		}
	}
	return e.Dump(w, t, h)
}

// Dumps exports t and returns the bytes.
func Dumps(e Exporter, t Table, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Dump(&buf, e, t, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AttachmentName returns the file name an export of e should be saved as.
func AttachmentName(e Exporter, filename string) string {
	if filename == "" {
		filename = DefaultFilename
	}
	return filename + "." + e.Extension()
}
