package timeout

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lookahead/buffer"
	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/observability"
)

// Reasons a pump stops, as logged and recorded on its span.
const (
	stopExhausted   = "exhausted"
	stopInterrupted = "interrupted"
	stopFailed      = "failed"
	stopClosed      = "closed"
)

// pumpCore is what both pump variants share: the buffer they feed, the
// interrupt flag they observe, and how they report stopping.
type pumpCore[T any] struct {
	buf       *buffer.Queue[item[T]]
	interrupt *atomic.Bool
	done      *atomic.Bool
	tag       string
	log       *logger.Logger
	metrics   *observability.IteratorMetrics
	produced  int64
}

// push hands v to the consumer. Nothing is recorded once the consumer has
// closed the buffer.
func (p *pumpCore[T]) push(ctx context.Context, v T) {
	if err := p.buf.Put(valueItem(v)); err != nil {
		return
	}
	p.produced++
	p.metrics.RecordProduced(ctx, p.tag)
}

// discardBuffered empties buf after the consumer side has ended and takes
// the elements left in it off the buffered gauge.
func discardBuffered[T any](ctx context.Context, buf *buffer.Queue[item[T]], metrics *observability.IteratorMetrics, tag string) {
	n := 0
	for {
		it, ok := buf.TryTake()
		if !ok {
			break
		}
		if it.kind == kindValue {
			n++
		}
	}
	metrics.RecordDiscarded(ctx, tag, n)
}

// endSpan ends the pump span. It runs before finish so the span is complete
// by the time a consumer can observe the end of the sequence.
func (p *pumpCore[T]) endSpan(span trace.Span, last item[T], reason string) {
	var err error
	if last.kind == kindError {
		err = last.err
	}
	observability.EndPumpSpan(span, reason, p.produced, err)
}

// finish enqueues the single terminal or error item and closes the buffer
// so nothing can follow it.
func (p *pumpCore[T]) finish(ctx context.Context, last item[T], reason string) {
	_ = p.buf.Put(last)
	p.buf.CloseWrite()
	if p.done.Load() {
		discardBuffered(ctx, p.buf, p.metrics, p.tag)
	}

	if last.kind == kindError {
		p.metrics.RecordSourceError(ctx, p.tag)
		fields := logger.Fields(
			logger.FieldError, last.err.Error(),
			logger.FieldProduced, p.produced,
		)
		if se, ok := last.err.(*SourceError); ok {
			fields[logger.FieldStack] = se.Stack
			fields[logger.FieldErrorType] = typeName(se.Err)
		}
		if p.interrupt.Load() {
			// closing a source to unblock it commonly surfaces as an error
			p.log.Debug("pump stopped after interrupt with source error", fields)
			return
		}
		p.log.Error("pump stopped: source failed", fields)
		return
	}
	p.log.Debug("pump stopped", logger.Fields(
		logger.FieldReason, reason,
		logger.FieldProduced, p.produced,
	))
}

// pump drives a blocking Source on its own goroutine.
type pump[T any] struct {
	pumpCore[T]
	src Source[T]
}

func (p *pump[T]) run() {
	ctx, span := observability.StartPumpSpan(context.Background(), p.tag, "thread")
	last, reason := p.drain(ctx)
	p.endSpan(span, last, reason)
	p.finish(ctx, last, reason)
}

func (p *pump[T]) drain(ctx context.Context) (last item[T], reason string) {
	defer func() {
		if r := recover(); r != nil {
			last, reason = errorItem[T](newPanicError(r, p.tag)), stopFailed
		}
	}()
	for {
		v, err := p.src.Next()
		if err != nil {
			if isExhausted(err) {
				return terminalItem[T](), stopExhausted
			}
			return errorItem[T](newSourceError(err, p.tag)), stopFailed
		}
		p.push(ctx, v)
		if p.interrupt.Load() {
			return terminalItem[T](), stopInterrupted
		}
	}
}

func typeName(err error) string {
	return fmt.Sprintf("%T", err)
}
