// Package pipeline composes pull-based stages around timeout sequences.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, or ForEach. Each stage pulls from the previous one on demand.
//
// The Iterator interface has the same shape as timeout.Stream, so any stage
// can be handed to WithTimeout, which puts a producer pump behind it and
// bounds how long downstream stages wait. Its output is Timed, so later
// stages can tell an idle tick from a real element.
//
// # Operators
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//   - Tap: side-effect without altering the value (logging, counting)
//   - WithTimeout: bound each wait on the upstream stage
//   - Values: drop idle ticks from a Timed stage
//
// # Usage
//
//	lines := pipeline.FromSequence(seq)
//	out := pipeline.Map(lines, func(_ context.Context, t pipeline.Timed[string]) (string, error) {
//	    if t.TimedOut {
//	        return "(idle)", nil
//	    }
//	    return t.Value, nil
//	})
//	err := pipeline.ForEach(ctx, out, print)
package pipeline
