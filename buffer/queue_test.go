package buffer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}
	for i := 1; i <= 3; i++ {
		if err := q.Put(i); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("len = %d want 3", q.Len())
	}
	for i := 1; i <= 3; i++ {
		v, ok := q.TryTake()
		if !ok || v != i {
			t.Fatalf("trytake = %v,%v want %d,true", v, ok, i)
		}
	}
	if _, ok := q.TryTake(); ok {
		t.Fatal("expected empty after takes")
	}
}

func TestQueue_TakeBlocksAndWakes(t *testing.T) {
	q := New[string]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v, err := q.Take(ctx)
		if err != nil || v != "x" {
			t.Errorf("take got (%q,%v)", v, err)
		}
	}()
	time.Sleep(10 * time.Millisecond)
	if err := q.Put("x"); err != nil {
		t.Fatal(err)
	}
	<-done
}

func TestQueue_TakeDeadlineLeavesQueueUntouched(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Take(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	_ = q.Put(7)
	v, err := q.Take(context.Background())
	if err != nil || v != 7 {
		t.Fatalf("take after deadline = (%d,%v), want (7,nil)", v, err)
	}
}

func TestQueue_CloseWriteDrainsThenErrors(t *testing.T) {
	q := New[int]()
	_ = q.Put(1)
	_ = q.Put(2)
	q.CloseWrite()
	q.CloseWrite()

	if err := q.Put(3); !errors.Is(err, ErrClosed) {
		t.Fatalf("put after close: got %v, want ErrClosed", err)
	}
	for _, want := range []int{1, 2} {
		v, err := q.Take(context.Background())
		if err != nil || v != want {
			t.Fatalf("take = (%d,%v), want (%d,nil)", v, err, want)
		}
	}
	if _, err := q.Take(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("take on drained closed queue: got %v, want ErrClosed", err)
	}
}

func TestQueue_CloseWakesWaiters(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Take(context.Background()); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	q.CloseWrite()
	wg.Wait()
}

func TestQueue_ConcurrentProducerPreservesOrder(t *testing.T) {
	q := NewWithCapacity[int](-1)
	const n = 1000
	go func() {
		for i := range n {
			_ = q.Put(i)
		}
		q.CloseWrite()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := range n {
		v, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
		if v != i {
			t.Fatalf("out of order: got %d want %d", v, i)
		}
	}
	if _, err := q.Take(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after drain, got %v", err)
	}
}
