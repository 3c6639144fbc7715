package timeout

import (
	"context"
	"errors"
	"io"
	"iter"
	"time"

	"github.com/kbukum/lookahead/buffer"
)

// Iterator is the goroutine-backed Sequence. Its pump calls Source.Next on
// a dedicated goroutine, so a source that blocks never blocks Next beyond
// the configured timeout.
type Iterator[T any] struct {
	facade[T]
	buf *buffer.Queue[item[T]]
	src Source[T]
}

// New wraps src and starts its pump. It fails only for a nil source or a
// negative initial timeout.
func New[T any](src Source[T], opts ...Option[T]) (*Iterator[T], error) {
	if src == nil {
		return nil, errors.New("timeout: nil source")
	}
	s := newSettings(opts)
	if err := validateTimeout(s.timeout); err != nil {
		return nil, err
	}

	it := &Iterator[T]{
		buf: buffer.New[item[T]](),
		src: src,
	}
	it.init(s)

	p := &pump[T]{
		pumpCore: pumpCore[T]{
			buf:       it.buf,
			interrupt: &it.interrupt,
			done:      &it.done,
			tag:       it.tag,
			log:       it.log.WithComponent("pump"),
			metrics:   it.metrics,
		},
		src: src,
	}
	go p.run()
	return it, nil
}

// Next returns the next element, or the sentinel if none arrives within
// the current timeout. See Sequence for the full result contract.
func (it *Iterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	it.timedOut.Store(false)
	defer it.finishRequest()
	if it.done.Load() {
		return zero, false, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	waitCtx := ctx
	if d := it.Timeout(); d > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	start := time.Now()
	got, err := it.buf.Take(waitCtx)
	waited := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return it.canceled(ctx, waited)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return it.expired(ctx, waited)
		}
		// buffer closed and drained: only reachable after Close
		it.done.Store(true)
		return zero, false, nil
	}
	if it.done.Load() {
		// closed while this request was waiting
		it.discard(ctx, got)
		return zero, false, nil
	}
	return it.resolve(ctx, got, waited)
}

// Close ends the sequence for the consumer, wakes a request that is still
// waiting, and interrupts the pump. If the source implements io.Closer it is
// closed too, which is the only way to unblock a source stuck in Next.
// Elements not yet consumed are dropped. Close is idempotent.
func (it *Iterator[T]) Close() error {
	it.Interrupt()
	if it.done.Swap(true) {
		return nil
	}
	it.buf.CloseWrite()
	discardBuffered(context.Background(), it.buf, it.metrics, it.tag)
	if c, ok := it.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// All returns a range-over-func view of the iterator.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return All[T](ctx, it)
}
