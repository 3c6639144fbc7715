package timeout

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/kbukum/lookahead/buffer"
	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/observability"
)

// AsyncIterator is the Sequence for context-aware streams.
//
// Each Next races a pull from the buffer against a timer. Whichever resolves
// first decides the result, and the loser is left running: a pull that
// resolves after its request already returned the sentinel is parked and
// becomes the result of the next request. Elements are therefore delivered
// exactly once however the timeouts fall.
type AsyncIterator[T any] struct {
	facade[T]
	buf    *buffer.Queue[item[T]]
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending <-chan item[T]
}

// NewAsync wraps stream and starts its pump. The pump passes the stream a
// context that Close cancels, and closes the stream when it stops.
func NewAsync[T any](stream Stream[T], opts ...Option[T]) (*AsyncIterator[T], error) {
	if stream == nil {
		return nil, errors.New("timeout: nil stream")
	}
	s := newSettings(opts)
	if err := validateTimeout(s.timeout); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	it := &AsyncIterator[T]{
		buf:    buffer.New[item[T]](),
		ctx:    ctx,
		cancel: cancel,
	}
	it.init(s)

	p := &asyncPump[T]{
		pumpCore: pumpCore[T]{
			buf:       it.buf,
			interrupt: &it.interrupt,
			done:      &it.done,
			tag:       it.tag,
			log:       it.log.WithComponent("pump"),
			metrics:   it.metrics,
		},
		stream: stream,
	}
	go p.run(ctx)
	return it, nil
}

// Next returns the next element, or the sentinel if none arrives within
// the current timeout. See Sequence for the full result contract.
func (it *AsyncIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	it.timedOut.Store(false)
	defer it.finishRequest()
	if it.done.Load() {
		return zero, false, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	it.mu.Lock()
	defer it.mu.Unlock()

	if it.pending == nil {
		it.pending = it.pull()
	}

	var expire <-chan time.Time
	if d := it.Timeout(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		expire = timer.C
	}

	start := time.Now()
	select {
	case got := <-it.pending:
		it.pending = nil
		if it.done.Load() {
			it.discard(ctx, got)
			return zero, false, nil
		}
		return it.resolve(ctx, got, time.Since(start))
	case <-expire:
		return it.expired(ctx, time.Since(start))
	case <-ctx.Done():
		return it.canceled(ctx, time.Since(start))
	}
}

// pull starts one buffer pull and returns where its result will land.
// The pull outlives the request that started it.
func (it *AsyncIterator[T]) pull() <-chan item[T] {
	ch := make(chan item[T], 1)
	go func() {
		got, err := it.buf.Take(it.ctx)
		if err != nil {
			// closed: the façade is already terminal
			got = terminalItem[T]()
		}
		ch <- got
	}()
	return ch
}

// Close ends the sequence, interrupts the pump and cancels the context the
// stream is pulled with. Elements not yet consumed are dropped. Close is
// idempotent.
func (it *AsyncIterator[T]) Close() error {
	it.Interrupt()
	if it.done.Swap(true) {
		return nil
	}
	it.cancel()
	it.buf.CloseWrite()
	ctx := context.Background()
	if it.mu.TryLock() {
		// a pull parked by a timed-out request resolves promptly once cancelled
		if it.pending != nil {
			it.discard(ctx, <-it.pending)
			it.pending = nil
		}
		it.mu.Unlock()
	}
	discardBuffered(ctx, it.buf, it.metrics, it.tag)
	return nil
}

// All returns a range-over-func view of the iterator.
func (it *AsyncIterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return All[T](ctx, it)
}

// asyncPump drives a Stream, passing it a context so a Close can end a
// pull that is in progress.
type asyncPump[T any] struct {
	pumpCore[T]
	stream Stream[T]
}

func (p *asyncPump[T]) run(ctx context.Context) {
	spanCtx, span := observability.StartPumpSpan(ctx, p.tag, "async")
	last, reason := p.drain(spanCtx, ctx)
	if cerr := p.stream.Close(); cerr != nil && last.kind != kindError {
		p.log.Warn("closing stream failed", logger.Fields(logger.FieldError, cerr.Error()))
	}
	p.endSpan(span, last, reason)
	p.finish(spanCtx, last, reason)
}

func (p *asyncPump[T]) drain(spanCtx, ctx context.Context) (last item[T], reason string) {
	defer func() {
		if r := recover(); r != nil {
			last, reason = errorItem[T](newPanicError(r, p.tag)), stopFailed
		}
	}()
	for {
		v, ok, err := p.stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return terminalItem[T](), stopClosed
			}
			if isExhausted(err) {
				return terminalItem[T](), stopExhausted
			}
			return errorItem[T](newSourceError(err, p.tag)), stopFailed
		}
		if !ok {
			return terminalItem[T](), stopExhausted
		}
		p.push(spanCtx, v)
		if p.interrupt.Load() {
			return terminalItem[T](), stopInterrupted
		}
	}
}
