// Package bootstrap runs a lookahead command with a uniform lifecycle.
//
// NewApp applies config defaults, validates, and initializes the logger.
// RunTask then starts OpenTelemetry exporters when the config enables them,
// runs the task with a context that SIGINT/SIGTERM cancels, and finally runs
// stop hooks (exporter flushes included) within a graceful timeout.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    seq, _ := timeout.New(src, timeout.WithMetrics[string](app.Metrics))
//	    ...
//	})
package bootstrap
