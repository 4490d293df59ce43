package exportable

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// textWriter returns a writer that transcodes UTF-8 text written to it into
// the named encoding. Close flushes any buffered bytes to w; it does not
// close w.
func textWriter(w io.Writer, name string) (io.WriteCloser, error) {
	if isUTF8(name) {
		return nopCloser{w}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// ValidateEncoding reports whether name is an encoding the text exporters
// can produce.
func ValidateEncoding(name string) error {
	if isUTF8(name) {
		return nil
	}
	if _, err := htmlindex.Get(name); err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
