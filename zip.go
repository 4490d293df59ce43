package exportable

import (
	"archive/zip"
	"io"
)

// ZippedExporter wraps the output of another exporter in a zip archive
// holding a single entry.
type ZippedExporter struct {
	Exporter
}

// Zipped returns an exporter that compresses e's output into a zip archive.
// The entry is named after the filename hint (default "table") and e's
// extension.
func Zipped(e Exporter) *ZippedExporter {
	return &ZippedExporter{Exporter: e}
}

func (z *ZippedExporter) Extension() string   { return z.Exporter.Extension() + ".zip" }
func (z *ZippedExporter) ContentType() string { return "application/zip" }

// RequiresStrict reports whether the wrapped exporter needs a strict table.
func (z *ZippedExporter) RequiresStrict() bool {
	s, ok := z.Exporter.(StrictExporter)
	return ok && s.RequiresStrict()
}

func (z *ZippedExporter) Dump(w io.Writer, t Table, h Hints) error {
	zw := zip.NewWriter(w)
	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:   AttachmentName(z.Exporter, h.Filename),
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	if err := dump(entry, z.Exporter, t, h); err != nil {
		return err
	}
	return zw.Close()
}
