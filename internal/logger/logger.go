// Package logger builds the zerolog loggers used by the exportable command.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"
}

// Options configures [New].
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Pretty switches from JSON lines to the human-readable console writer.
	Pretty bool
}

// New returns a timestamped logger writing to w. The PRETTY=1 and DEBUG=1
// environment variables force pretty output and debug level.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(opts.Level); err != nil {
			return zerolog.Nop(), err
		}
	}
	if os.Getenv("DEBUG") == "1" {
		level = zerolog.DebugLevel
	}
	if opts.Pretty || os.Getenv("PRETTY") == "1" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
