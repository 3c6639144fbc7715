package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/lookahead/bootstrap"
	"github.com/kbukum/lookahead/config"
	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/pipeline"
	"github.com/kbukum/lookahead/timeout"
)

// errIdleLimit stops a tail that has been idle for too long.
var errIdleLimit = errors.New("idle limit reached")

type tailOptions struct {
	heartbeat string
	maxIdle   int
}

func newTailCmd(g *globalOptions) *cobra.Command {
	opts := &tailOptions{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Echo stdin lines, printing a heartbeat when input goes idle",
		Long: `Read stdin line by line. Every line is echoed as soon as it arrives; when
no line arrives within the timeout, the heartbeat text is printed instead.

Examples:
  # Print "." every 2s of silence
  slow-producer | lookahead tail -t 2s

  # Give up after 5 consecutive idle periods
  lookahead tail -t 1s --max-idle 5 < /dev/ttyUSB0`,
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
				return runTail(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
			})
		},
	}
	cmd.Flags().StringVar(&opts.heartbeat, "heartbeat", ".", "text printed for each idle period")
	cmd.Flags().IntVar(&opts.maxIdle, "max-idle", 0, "stop after this many consecutive idle periods (0 never stops)")
	addIteratorFlags(cmd.Flags())
	return cmd
}

// lineStages builds the timed line stream for in, using the variant the
// config selects.
func lineStages(cfg config.IteratorConfig, in io.Reader, opts ...timeout.Option[string]) (*pipeline.Pipeline[pipeline.Timed[string]], error) {
	sc := bufio.NewScanner(in)
	opts = config.IteratorOptions(cfg, opts...)
	if cfg.Async {
		src := timeout.FromScanner(sc)
		stream := timeout.StreamFunc[string](func(context.Context) (string, bool, error) {
			line, err := src.Next()
			if errors.Is(err, timeout.ErrExhausted) {
				return "", false, nil
			}
			return line, err == nil, err
		})
		return pipeline.WithTimeout(pipeline.From[string](stream), opts...), nil
	}
	seq, err := timeout.New(timeout.FromScanner(sc), opts...)
	if err != nil {
		return nil, err
	}
	return pipeline.FromSequence[string](seq), nil
}

func runTail(ctx context.Context, app *bootstrap.App[*Config], in io.Reader, out io.Writer, opts *tailOptions) error {
	log := app.Logger.WithComponent("tail")
	lines, err := lineStages(app.Cfg.Iterator, in,
		timeout.WithLogger[string](log),
		timeout.WithMetrics[string](app.Metrics),
	)
	if err != nil {
		return err
	}

	var echoed, idle, consecutive int
	err = pipeline.ForEach(ctx, lines, func(_ context.Context, t pipeline.Timed[string]) error {
		if t.TimedOut {
			idle++
			consecutive++
			if _, err := fmt.Fprintln(out, opts.heartbeat); err != nil {
				return err
			}
			if opts.maxIdle > 0 && consecutive >= opts.maxIdle {
				return errIdleLimit
			}
			return nil
		}
		consecutive = 0
		echoed++
		_, err := fmt.Fprintln(out, t.Value)
		return err
	})

	fields := logger.Fields("lines", echoed, "idle", idle)
	if errors.Is(err, errIdleLimit) {
		log.Info("input idle, stopping", fields)
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("input ended", fields)
	return nil
}
