package timeout

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/lookahead/logger"
)

// gatedSource yields values[i] only after gates[i] is closed. It signals
// entered[i] when call i starts waiting, so tests can sequence the pump.
type gatedSource[T any] struct {
	values  []T
	err     error // returned after values are used up; nil means exhausted
	gates   []chan struct{}
	entered []chan struct{}
	calls   atomic.Int32
}

func newGatedSource[T any](values ...T) *gatedSource[T] {
	s := &gatedSource[T]{values: values}
	for range len(values) + 1 {
		s.gates = append(s.gates, make(chan struct{}))
		s.entered = append(s.entered, make(chan struct{}))
	}
	return s
}

func (s *gatedSource[T]) open(i int) { close(s.gates[i]) }

func (s *gatedSource[T]) openAll() {
	for i := range s.gates {
		s.open(i)
	}
}

func (s *gatedSource[T]) waitEntered(t *testing.T, i int) {
	t.Helper()
	select {
	case <-s.entered[i]:
	case <-time.After(2 * time.Second):
		t.Fatalf("source call %d never started", i)
	}
}

func (s *gatedSource[T]) Next() (T, error) {
	i := int(s.calls.Add(1)) - 1
	close(s.entered[i])
	<-s.gates[i]
	var zero T
	if i >= len(s.values) {
		if s.err != nil {
			return zero, s.err
		}
		return zero, ErrExhausted
	}
	return s.values[i], nil
}

// syncBuffer lets the pump goroutine log while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) waitFor(t *testing.T, substr string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := b.String(); strings.Contains(s, substr) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("log never contained %q; got %q", substr, b.String())
	return ""
}

func captureLogger(level string) (*logger.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return logger.NewWithWriter(&logger.Config{Level: level, Format: "json"}, "test", buf), buf
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

type result[T any] struct {
	val T
	ok  bool
	err error
}

func next[T any](t *testing.T, seq Sequence[T]) result[T] {
	t.Helper()
	v, ok, err := seq.Next(testCtx(t))
	return result[T]{val: v, ok: ok, err: err}
}

func expectValue[T comparable](t *testing.T, seq Sequence[T], want T) {
	t.Helper()
	r := next(t, seq)
	if r.err != nil || !r.ok || r.val != want {
		t.Fatalf("Next() = (%v, %v, %v), want (%v, true, nil)", r.val, r.ok, r.err, want)
	}
	if seq.TimedOut() {
		t.Fatalf("Next() returned %v but reported a timeout", want)
	}
}

func expectEnd[T any](t *testing.T, seq Sequence[T]) {
	t.Helper()
	r := next(t, seq)
	if r.err != nil || r.ok {
		t.Fatalf("Next() = (%v, %v, %v), want end of sequence", r.val, r.ok, r.err)
	}
}

func expectSentinel[T comparable](t *testing.T, seq Sequence[T]) {
	t.Helper()
	r := next(t, seq)
	if r.err != nil || !r.ok || r.val != seq.Sentinel() {
		t.Fatalf("Next() = (%v, %v, %v), want sentinel %v", r.val, r.ok, r.err, seq.Sentinel())
	}
	if !seq.TimedOut() {
		t.Fatal("TimedOut() = false after sentinel")
	}
}
