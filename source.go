package exportable

import "iter"

// Source produces raw rows for a table. A source built from a slice has a
// known length; the others are single-pass producers with unknown length.
type Source[R any] struct {
	seq   iter.Seq2[R, error]
	rows  []R
	sized bool
}

// FromSlice returns a source over rows. Its length seeds the size hint.
func FromSlice[R any](rows []R) Source[R] {
	return Source[R]{rows: rows, sized: true}
}

// FromSeq returns a single-pass source over seq.
func FromSeq[R any](seq iter.Seq[R]) Source[R] {
	return Source[R]{seq: func(yield func(R, error) bool) {
		for r := range seq {
			if !yield(r, nil) {
				return
			}
		}
	}}
}

// FromSeq2 returns a single-pass source over a fallible producer. A non-nil
// error fails the row at which it is produced.
func FromSeq2[R any](seq iter.Seq2[R, error]) Source[R] {
	return Source[R]{seq: seq}
}

// FromChan returns a single-pass source that receives rows from ch until it
// is closed.
func FromChan[R any](ch <-chan R) Source[R] {
	return FromSeq(chanToIter(ch))
}

// Len reports the number of rows when the source has a defined length.
func (s Source[R]) Len() (int, bool) {
	return len(s.rows), s.sized
}

func (s Source[R]) all() iter.Seq2[R, error] {
	if s.seq != nil {
		return s.seq
	}
	return func(yield func(R, error) bool) {
		for _, r := range s.rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func chanToIter[T any](ch <-chan T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range ch {
			if !yield(item) {
				return
			}
		}
	}
}
