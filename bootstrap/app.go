package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/observability"
)

const meterName = "github.com/kbukum/lookahead"

// App runs one command with config, logging, telemetry and signal handling
// set up the same way every time.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	// Metrics is ready after startup; before that it is nil, which records
	// nothing.
	Metrics *observability.IteratorMetrics

	opts            *appOptions
	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		opts:            o,
		gracefulTimeout: 10 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// RunTask executes a finite task with the full lifecycle: telemetry start,
// start hooks, the task itself, then stop hooks. The task's context is
// canceled by SIGINT or SIGTERM. The task's error takes precedence over
// shutdown errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	taskErr := task(taskCtx)
	fields := logger.DurationFields("task", time.Since(start))
	switch {
	case taskErr != nil && taskCtx.Err() != nil && ctx.Err() == nil:
		a.Logger.Info("task interrupted by signal", fields)
		if errors.Is(taskErr, context.Canceled) {
			taskErr = nil
		}
	case taskErr != nil:
		a.Logger.Error("task failed", logger.MergeWithError(fields, taskErr))
	default:
		a.Logger.Debug("task finished", fields)
	}

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	a.Logger.Debug("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.startTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	return nil
}

// startTelemetry starts the exporters the config enables and registers
// their flushes as stop hooks, then builds the iterator instruments.
func (a *App[C]) startTelemetry(ctx context.Context) error {
	base := a.Cfg.GetServiceConfig()
	mp := a.opts.meterProvider

	if base.Observability.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, base.TracerConfig())
		if err != nil {
			return err
		}
		a.OnStop(tp.Shutdown)
	}
	if mp == nil && base.Observability.Metrics.Enabled {
		sdkmp, err := observability.InitMeter(ctx, base.MeterConfig())
		if err != nil {
			return err
		}
		a.OnStop(sdkmp.Shutdown)
	}

	meter := observability.Meter(meterName)
	if mp != nil {
		meter = mp.Meter(meterName)
	}
	m, err := observability.NewIteratorMetrics(meter)
	if err != nil {
		return err
	}
	a.Metrics = m
	return nil
}

// stop runs stop hooks in reverse order within the graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hooks := slices.Clone(a.onStop)
	slices.Reverse(hooks)
	if err := runHooks(ctx, hooks); err != nil {
		a.Logger.Warn("shutdown incomplete", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	return nil
}
