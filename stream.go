package exportable

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
)

// DumpIter runs e.Dump on a background goroutine and yields every chunk the
// exporter writes, in write order. At most the configured buffer size of
// chunks (default [DefaultBufferSize]) is held between the exporter and the
// consumer; a full buffer blocks the exporter.
//
// If the exporter fails, the chunks it wrote before failing are yielded and
// then the sequence yields a single error wrapping [ErrProducer] and the
// exporter's error. Stopping the iteration early or cancelling ctx stops the
// exporter, and the goroutine has exited by the time the range loop ends.
func DumpIter(ctx context.Context, e Exporter, t Table, opts ...Option) iter.Seq2[[]byte, error] {
	o := newOptions(opts)
	return func(yield func([]byte, error) bool) {
		ctx, cancel := context.WithCancelCause(ctx)
		chunks := make(chan []byte, o.bufferSize)
		result := make(chan error, 1)

		go func() {
			defer close(chunks)
			result <- safeDump(e, &chanWriter{ctx: ctx, ch: chunks}, t, o.hints)
		}()
		defer func() {
			cancel(ErrStreamClosed)
			for range chunks {
			}
		}()

		for chunk := range chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if err := <-result; err != nil {
			yield(nil, fmt.Errorf("%w: %w", ErrProducer, err))
		}
	}
}

func safeDump(e Exporter, w io.Writer, t Table, h Hints) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("exporter %q panicked: %v", e.Extension(), r)
		}
	}()
	return dump(w, e, t, h)
}

// chanWriter hands each write to the consumer as its own chunk.
type chanWriter struct {
	ctx context.Context
	ch  chan<- []byte
}

func (w *chanWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.ctx.Err() != nil {
		return 0, context.Cause(w.ctx)
	}
	select {
	case w.ch <- bytes.Clone(p):
		return len(p), nil
	case <-w.ctx.Done():
		return 0, context.Cause(w.ctx)
	}
}

// NewReader returns a reader over the chunks of [DumpIter]. Close stops the
// export; reads after Close fail with [ErrStreamClosed].
func NewReader(ctx context.Context, e Exporter, t Table, opts ...Option) io.ReadCloser {
	next, stop := iter.Pull2(DumpIter(ctx, e, t, opts...))
	return &reader{next: next, stop: stop}
}

type reader struct {
	next func() ([]byte, error, bool)
	stop func()
	buf  []byte
	err  error
}

func (r *reader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		chunk, err, ok := r.next()
		switch {
		case !ok:
			r.err = io.EOF
		case err != nil:
			r.err = err
		default:
			r.buf = chunk
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *reader) Close() error {
	r.stop()
	r.buf = nil
	r.err = ErrStreamClosed
	return nil
}
