package timeout

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	apperrors "github.com/kbukum/lookahead/errors"
)

// ErrExhausted is returned by a Source to signal the normal end of its
// sequence. io.EOF is accepted as well.
var ErrExhausted error = apperrors.Exhausted()

// Source is a blocking producer pulled by Iterator's pump. Next returns the
// next element, ErrExhausted (or io.EOF) at the end, or any other error to
// fail the sequence. Next is only ever called from the pump goroutine.
type Source[T any] interface {
	Next() (T, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func() (T, error)

// Next calls f.
func (f SourceFunc[T]) Next() (T, error) { return f() }

// Stream is a context-aware producer pulled by AsyncIterator's pump.
// Next returns (zero, false, nil) when exhausted. Close is called once by the
// pump when it stops.
type Stream[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// StreamFunc adapts a function to Stream; its Close is a no-op.
type StreamFunc[T any] func(ctx context.Context) (T, bool, error)

// Next calls f.
func (f StreamFunc[T]) Next(ctx context.Context) (T, bool, error) { return f(ctx) }

// Close does nothing.
func (f StreamFunc[T]) Close() error { return nil }

func isExhausted(err error) bool {
	return errors.Is(err, ErrExhausted) || errors.Is(err, io.EOF)
}

// FromSlice returns a Source that yields items in order.
func FromSlice[T any](items []T) Source[T] {
	i := 0
	return SourceFunc[T](func() (T, error) {
		if i >= len(items) {
			var zero T
			return zero, ErrExhausted
		}
		v := items[i]
		i++
		return v, nil
	})
}

// FromChan returns a Source that yields values received from ch and is
// exhausted when ch is closed.
func FromChan[T any](ch <-chan T) Source[T] {
	return SourceFunc[T](func() (T, error) {
		v, ok := <-ch
		if !ok {
			return v, ErrExhausted
		}
		return v, nil
	})
}

// FromSeq returns a Source over a range-over-func sequence. The source is
// an io.Closer, so closing the Iterator that pulls it stops seq.
func FromSeq[T any](seq iter.Seq[T]) Source[T] {
	next, stop := iter.Pull(seq)
	return &pullSource[T]{
		pull: func() (T, error) {
			v, ok := next()
			if !ok {
				return v, ErrExhausted
			}
			return v, nil
		},
		stop: stop,
	}
}

// FromSeq2 returns a Source over a sequence of (value, error) pairs. The
// first non-nil error fails the source. Like FromSeq, it stops seq when
// closed.
func FromSeq2[T any](seq iter.Seq2[T, error]) Source[T] {
	next, stop := iter.Pull2(seq)
	return &pullSource[T]{
		pull: func() (T, error) {
			v, err, ok := next()
			if !ok {
				return v, ErrExhausted
			}
			return v, err
		},
		stop: stop,
	}
}

// pullSource guards a pulled iterator: next and stop must never run
// concurrently, and stop runs exactly once, either when the sequence ends or
// fails or when Close is called.
type pullSource[T any] struct {
	pull func() (T, error)
	stop func()

	mu      sync.Mutex
	stopped bool
	closing atomic.Bool
}

func (s *pullSource[T]) Next() (T, error) {
	v, err := s.next()
	// Close found the source busy and left the stop to us.
	if s.closing.Load() && s.mu.TryLock() {
		s.release()
		s.mu.Unlock()
	}
	return v, err
}

func (s *pullSource[T]) next() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		var zero T
		return zero, ErrExhausted
	}
	v, err := s.pull()
	if err != nil {
		s.release()
	}
	return v, err
}

// Close stops the underlying sequence. If a pull is in progress the stop
// happens as soon as it returns.
func (s *pullSource[T]) Close() error {
	s.closing.Store(true)
	if s.mu.TryLock() {
		s.release()
		s.mu.Unlock()
	}
	return nil
}

// release must be called with s.mu held.
func (s *pullSource[T]) release() {
	if !s.stopped {
		s.stopped = true
		s.stop()
	}
}

// FromScanner returns a Source of scanned tokens. The scanner's error, if
// any, fails the source; a clean end of input exhausts it.
func FromScanner(sc *bufio.Scanner) Source[string] {
	return SourceFunc[string](func() (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", ErrExhausted
	})
}
