// Package timeout wraps a blocking or slow producer in a sequence whose Next
// waits at most a configurable timeout.
//
// A wrapper eagerly starts a background pump that drains the source into an
// unbounded FIFO. Each Next waits on that FIFO: it returns the next element,
// the configured sentinel when the wait expires, or the end/error the pump
// relayed. A timed-out wait never loses an element; it is returned by a later
// call instead.
//
// Two variants implement Sequence:
//
//   - Iterator runs the pump on its own goroutine and waits on the buffer
//     with a deadline. Use it for sources that block (readers, scanners,
//     channel-backed producers) and know nothing about context.
//   - AsyncIterator pulls from a context-aware Stream. Each Next races an
//     in-flight buffer pull against a timer; the pull is never cancelled, so
//     a value that arrives after its request gave up is delivered by the next
//     request.
//
// Errors raised by the source are relayed through the buffer as a
// *SourceError after every element produced before them. The sequence then
// ends: every later Next returns (zero, false, nil) without touching the
// buffer again.
//
//	seq, err := timeout.New(timeout.FromScanner(bufio.NewScanner(os.Stdin)),
//	    timeout.WithTimeout[string](time.Second),
//	)
//	for {
//	    line, ok, err := seq.Next(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    if seq.TimedOut() {
//	        continue // idle
//	    }
//	    fmt.Println(line)
//	}
//
// Interrupt asks the pump to stop after its next successful production; it
// never preempts a source that is blocked.
package timeout
