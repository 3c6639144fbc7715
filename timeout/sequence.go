package timeout

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/observability"
)

// Sequence is the consumer side shared by Iterator and AsyncIterator.
//
// Next returns (v, true, nil) for an element or, when the wait expired, for
// the sentinel; (zero, false, nil) once the sequence has ended; and
// (zero, false, err) for a source failure or the caller's context error. A
// cancelled caller context does not end the sequence.
type Sequence[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
	SetTimeout(d time.Duration) error
	Timeout() time.Duration
	SetResetOnNext(reset bool)
	Sentinel() T
	TimedOut() bool
	Interrupt()
}

var (
	_ Sequence[int] = (*Iterator[int])(nil)
	_ Sequence[int] = (*AsyncIterator[int])(nil)
)

// facade holds the consumer-side state both variants share. Every field a
// consumer may touch from another goroutine is atomic.
type facade[T any] struct {
	timeout     atomic.Int64
	resetOnNext atomic.Bool
	interrupt   atomic.Bool
	done        atomic.Bool
	timedOut    atomic.Bool

	sentinel     T
	raiseOnError bool
	errorValue   func(error) (T, bool)
	tag          string
	log          *logger.Logger
	metrics      *observability.IteratorMetrics
}

func (f *facade[T]) init(s *settings[T]) {
	f.timeout.Store(int64(s.timeout))
	f.resetOnNext.Store(s.resetOnNext)
	f.sentinel = s.sentinel
	f.raiseOnError = s.raiseOnError
	f.errorValue = s.errorValue
	f.tag = s.tag
	f.log = s.log.WithFields(logger.Fields(logger.FieldTag, s.tag))
	f.metrics = s.metrics
}

// SetTimeout sets the wait bound for the next request. Zero means wait
// indefinitely. A request already waiting keeps the bound it started with.
func (f *facade[T]) SetTimeout(d time.Duration) error {
	if err := validateTimeout(d); err != nil {
		return err
	}
	f.timeout.Store(int64(d))
	return nil
}

// Timeout returns the wait bound the next request will use.
func (f *facade[T]) Timeout() time.Duration {
	return time.Duration(f.timeout.Load())
}

// SetResetOnNext toggles reverting the timeout to zero after every request.
func (f *facade[T]) SetResetOnNext(reset bool) {
	f.resetOnNext.Store(reset)
}

// Sentinel returns the value Next yields when a wait expires.
func (f *facade[T]) Sentinel() T {
	return f.sentinel
}

// TimedOut reports whether the most recent Next returned the sentinel
// because its wait expired.
func (f *facade[T]) TimedOut() bool {
	return f.timedOut.Load()
}

// Interrupt asks the pump to stop after its next successful production.
// Elements already produced, including that one, are still delivered.
func (f *facade[T]) Interrupt() {
	f.interrupt.Store(true)
}

// Tag returns the stream's tag.
func (f *facade[T]) Tag() string {
	return f.tag
}

// Done reports whether the sequence has ended.
func (f *facade[T]) Done() bool {
	return f.done.Load()
}

func (f *facade[T]) finishRequest() {
	if f.resetOnNext.Load() {
		f.timeout.Store(0)
	}
}

func (f *facade[T]) expired(ctx context.Context, waited time.Duration) (T, bool, error) {
	f.timedOut.Store(true)
	f.metrics.RecordRequest(ctx, f.tag, observability.OutcomeTimeout, waited)
	return f.sentinel, true, nil
}

func (f *facade[T]) canceled(ctx context.Context, waited time.Duration) (T, bool, error) {
	var zero T
	f.metrics.RecordRequest(ctx, f.tag, observability.OutcomeCanceled, waited)
	return zero, false, ctx.Err()
}

// resolve turns a dequeued item into Next's result and moves the façade to
// its terminal state on an end or error item.
func (f *facade[T]) resolve(ctx context.Context, it item[T], waited time.Duration) (T, bool, error) {
	var zero T
	switch it.kind {
	case kindTerminal:
		f.done.Store(true)
		f.metrics.RecordRequest(ctx, f.tag, observability.OutcomeEnd, waited)
		return zero, false, nil
	case kindError:
		f.done.Store(true)
		f.metrics.RecordRequest(ctx, f.tag, observability.OutcomeError, waited)
		fields := logger.Fields(logger.FieldError, it.err.Error())
		if !f.raiseOnError {
			if v, ok := f.errorValue(it.err); ok {
				f.log.Warn("source failed, delivering failure as element", fields)
				return v, true, nil
			}
		}
		f.log.Debug("surfacing source failure", fields)
		return zero, false, it.err
	default:
		f.metrics.RecordRequest(ctx, f.tag, observability.OutcomeValue, waited)
		return it.val, true, nil
	}
}

// discard accounts for an element taken off the buffer after the sequence
// was closed, which no caller will see.
func (f *facade[T]) discard(ctx context.Context, it item[T]) {
	if it.kind == kindValue {
		f.metrics.RecordDiscarded(ctx, f.tag, 1)
	}
}

// All adapts a Sequence to range-over-func. Sentinels are yielded like any
// element; iteration stops at the end of the sequence, and a failure is
// yielded once as (zero, err) before stopping.
func All[T any](ctx context.Context, seq Sequence[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := seq.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
