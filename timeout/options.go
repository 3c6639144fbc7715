package timeout

import (
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/observability"
)

// Option configures a sequence at construction.
type Option[T any] func(*settings[T])

type settings[T any] struct {
	timeout      time.Duration
	sentinel     T
	resetOnNext  bool
	raiseOnError bool
	errorValue   func(error) (T, bool)
	tag          string
	log          *logger.Logger
	metrics      *observability.IteratorMetrics
}

func newSettings[T any](opts []Option[T]) *settings[T] {
	s := &settings[T]{raiseOnError: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.tag == "" {
		s.tag = uuid.NewString()
	}
	if s.log == nil {
		s.log = logger.Get("lookahead")
	}
	if s.errorValue == nil {
		s.errorValue = assertErrorValue[T]
	}
	return s
}

// WithTimeout sets the initial wait bound. Zero means wait indefinitely;
// negative values make the constructor fail.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(s *settings[T]) { s.timeout = d }
}

// WithSentinel sets the value Next returns when a wait expires. The default
// is the zero value of T. Use a unique pointer when callers compare by
// identity.
func WithSentinel[T any](sentinel T) Option[T] {
	return func(s *settings[T]) { s.sentinel = sentinel }
}

// WithResetOnNext makes every Next revert the timeout to zero once it
// completes, whatever its outcome.
func WithResetOnNext[T any](reset bool) Option[T] {
	return func(s *settings[T]) { s.resetOnNext = reset }
}

// WithRaiseOnError selects how a source failure is surfaced. With true (the
// default) Next returns the *SourceError. With false Next returns the error
// as an element once, when T can hold it (T is error, any, or an interface
// error satisfies); otherwise the error is still returned.
func WithRaiseOnError[T any](raise bool) Option[T] {
	return func(s *settings[T]) { s.raiseOnError = raise }
}

// WithErrorValue disables raising and converts a source failure into the
// element returned in its place.
func WithErrorValue[T any](fn func(error) T) Option[T] {
	return func(s *settings[T]) {
		s.raiseOnError = false
		s.errorValue = func(err error) (T, bool) { return fn(err), true }
	}
}

// WithTag names the stream in logs, spans and metrics. A random UUID is used
// when no tag is given.
func WithTag[T any](tag string) Option[T] {
	return func(s *settings[T]) { s.tag = tag }
}

// WithLogger sets the logger used for pump diagnostics.
func WithLogger[T any](l *logger.Logger) Option[T] {
	return func(s *settings[T]) { s.log = l }
}

// WithMetrics records pump and request metrics on m.
func WithMetrics[T any](m *observability.IteratorMetrics) Option[T] {
	return func(s *settings[T]) { s.metrics = m }
}

func assertErrorValue[T any](err error) (T, bool) {
	v, ok := any(err).(T)
	return v, ok
}

// NewSentinel allocates a fresh *E to use with WithSentinel when elements are
// pointers and callers compare by identity. E must not be a zero-size type,
// since distinct zero-size allocations may share an address.
func NewSentinel[E any]() *E {
	return new(E)
}
