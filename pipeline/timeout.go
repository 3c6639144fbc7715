package pipeline

import (
	"context"

	"github.com/kbukum/lookahead/timeout"
)

// Timed is an element of a stage with a bounded wait. TimedOut marks the
// sentinel emitted because nothing arrived in time; Value then holds the
// sentinel.
type Timed[T any] struct {
	Value    T
	TimedOut bool
}

// WithTimeout runs p behind a timeout.AsyncIterator built with opts, so each
// downstream pull waits at most the configured timeout. The upstream stage is
// pulled with a context that closing the pipeline cancels.
func WithTimeout[T any](p *Pipeline[T], opts ...timeout.Option[T]) *Pipeline[Timed[T]] {
	return &Pipeline[Timed[T]]{
		create: func(ctx context.Context) Iterator[Timed[T]] {
			upstream := p.create(ctx)
			seq, err := timeout.NewAsync[T](upstream, opts...)
			if err != nil {
				_ = upstream.Close()
				return &errIter[Timed[T]]{err: err}
			}
			return &timedIter[T]{seq: seq}
		},
	}
}

// FromSequence starts a pipeline from an already built timeout sequence.
// Closing the pipeline closes seq.
func FromSequence[T any](seq timeout.Sequence[T]) *Pipeline[Timed[T]] {
	return From[Timed[T]](&timedIter[T]{seq: seq})
}

// Values drops idle ticks and unwraps the rest.
func Values[T any](p *Pipeline[Timed[T]]) *Pipeline[T] {
	active := Filter(p, func(t Timed[T]) bool { return !t.TimedOut })
	return Map(active, func(_ context.Context, t Timed[T]) (T, error) {
		return t.Value, nil
	})
}

type timedIter[T any] struct {
	seq timeout.Sequence[T]
}

func (it *timedIter[T]) Next(ctx context.Context) (Timed[T], bool, error) {
	v, ok, err := it.seq.Next(ctx)
	if err != nil || !ok {
		return Timed[T]{}, false, err
	}
	return Timed[T]{Value: v, TimedOut: it.seq.TimedOut()}, true, nil
}

func (it *timedIter[T]) Close() error { return it.seq.Close() }
