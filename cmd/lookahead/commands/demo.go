package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/lookahead/bootstrap"
	"github.com/kbukum/lookahead/config"
	"github.com/kbukum/lookahead/timeout"
	"github.com/kbukum/lookahead/util"
)

type demoOptions struct {
	count      int
	interval   time.Duration
	failAt     int
	interruptN int
}

func newDemoCmd(g *globalOptions) *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic slow source through both sequence variants",
		Long: `Produce items at an uneven pace and read them through the goroutine-backed
and the context-aware sequence, one after the other. Reads that time out
print (timeout); the item they missed is printed by a later read.

Examples:
  lookahead demo -t 50ms --interval 40ms
  lookahead demo -t 50ms --fail-at 4
  lookahead demo --fail-at 3 --raise-on-error=false
  lookahead demo --interrupt-after 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			app, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return runDemo(ctx, app, cmd.OutOrStdout(), opts)
			})
		},
	}
	cmd.Flags().IntVar(&opts.count, "count", 6, "number of items to produce")
	cmd.Flags().DurationVar(&opts.interval, "interval", 40*time.Millisecond, "base delay between items; every third item takes three times as long")
	cmd.Flags().IntVar(&opts.failAt, "fail-at", 0, "make the source fail instead of producing this item (1-based, 0 never fails)")
	cmd.Flags().IntVar(&opts.interruptN, "interrupt-after", 0, "interrupt the producer after reading this many items (0 never)")
	addIteratorFlags(cmd.Flags())
	return cmd
}

// errSynthetic is what the demo source fails with.
var errSynthetic = errors.New("synthetic failure")

// delayFor returns how long item i (1-based) takes to produce.
func (o *demoOptions) delayFor(i int) time.Duration {
	if i%3 == 0 {
		return 3 * o.interval
	}
	return o.interval
}

// demoSource is the goroutine-backed producer: it sleeps with no way to be
// cancelled.
func (o *demoOptions) demoSource() timeout.Source[string] {
	i := 0
	return timeout.SourceFunc[string](func() (string, error) {
		i++
		if i > o.count {
			return "", timeout.ErrExhausted
		}
		time.Sleep(o.delayFor(i))
		if i == o.failAt {
			return "", errSynthetic
		}
		return fmt.Sprintf("item-%d", i), nil
	})
}

// demoStream is the context-aware producer: its wait ends early when the
// sequence is closed.
func (o *demoOptions) demoStream() timeout.Stream[string] {
	i := 0
	return timeout.StreamFunc[string](func(ctx context.Context) (string, bool, error) {
		i++
		if i > o.count {
			return "", false, nil
		}
		select {
		case <-time.After(o.delayFor(i)):
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
		if i == o.failAt {
			return "", false, errSynthetic
		}
		return fmt.Sprintf("item-%d", i), true, nil
	})
}

func runDemo(ctx context.Context, app *bootstrap.App[*Config], out io.Writer, opts *demoOptions) error {
	base := config.IteratorOptions(app.Cfg.Iterator,
		timeout.WithSentinel("(timeout)"),
		timeout.WithLogger[string](app.Logger.WithComponent("demo")),
		timeout.WithMetrics[string](app.Metrics),
	)
	if !util.Deref(app.Cfg.Iterator.RaiseOnError, true) {
		base = append(base, timeout.WithErrorValue(func(err error) string {
			return "(failed: " + errors.Unwrap(err).Error() + ")"
		}))
	}

	thread, err := timeout.New(opts.demoSource(), base...)
	if err != nil {
		return err
	}
	if err := drainDemo(ctx, out, "thread", thread, opts.interruptN); err != nil {
		return err
	}

	async, err := timeout.NewAsync(opts.demoStream(), base...)
	if err != nil {
		return err
	}
	return drainDemo(ctx, out, "async", async, opts.interruptN)
}

// drainDemo prints everything seq yields, labelled. A source failure is
// printed rather than returned so both variants always run.
func drainDemo(ctx context.Context, out io.Writer, label string, seq timeout.Sequence[string], interruptAfter int) error {
	defer seq.Close()
	read := 0
	for v, err := range timeout.All(ctx, seq) {
		if err != nil {
			var se *timeout.SourceError
			if errors.As(err, &se) {
				fmt.Fprintf(out, "[%s] error: %v\n", label, se.Err)
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "[%s] %s\n", label, v)
		if seq.TimedOut() {
			continue
		}
		read++
		if read == interruptAfter {
			seq.Interrupt()
			fmt.Fprintf(out, "[%s] interrupted\n", label)
		}
	}
	fmt.Fprintf(out, "[%s] done\n", label)
	return nil
}
