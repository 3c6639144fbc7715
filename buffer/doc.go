// Package buffer provides an unbounded, concurrency-safe FIFO queue with a
// context-aware blocking Take.
//
// Queue is the hand-off primitive between a single background producer and a
// single consumer: Put never blocks, Take blocks until an element is available,
// the context is done, or the queue is closed for writing and drained. A Take
// that gives up because its context ended never removes an element, so a
// caller can wait with a deadline and retry later without losing data.
//
//	q := buffer.New[int]()
//	go func() {
//	    q.Put(1)
//	    q.CloseWrite()
//	}()
//	v, err := q.Take(ctx) // 1, nil
//	_, err = q.Take(ctx)  // buffer.ErrClosed
package buffer
