package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/lookahead/config"
	apperrors "github.com/kbukum/lookahead/errors"
	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/timeout"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Iterator             config.IteratorConfig `yaml:"iterator" mapstructure:"iterator"`
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Iterator.ApplyDefaults()
}

func (c *testConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Iterator.Validate()
}

func newTestConfig(name string) *testConfig {
	return &testConfig{ServiceConfig: config.ServiceConfig{Name: name, Version: "1.0.0"}}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(newTestConfig("test-svc"), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected app identity: %s %s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied, environment = %q", app.Cfg.Environment)
	}
	if app.Cfg.Iterator.RaiseOnError == nil {
		t.Error("embedding config defaults not applied")
	}
}

func TestNewApp_ValidationError(t *testing.T) {
	cfg := newTestConfig("")
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); !apperrors.HasCode(err, apperrors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}

	cfg = newTestConfig("svc")
	cfg.Iterator.Timeout = -time.Second
	_, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout validation error, got %v", err)
	}
}

func TestRunTask_HooksOrder(t *testing.T) {
	app, err := NewApp(newTestConfig("svc"), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop1"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop2"); return nil })

	err = app.RunTask(context.Background(), func(context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, ","); got != "start,task,stop2,stop1" {
		t.Errorf("order = %s, want start,task,stop2,stop1", got)
	}
}

func TestRunTask_TaskErrorWins(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"), WithLogger(logger.Nop()))
	taskErr := errors.New("task failed")
	app.OnStop(func(context.Context) error { return errors.New("stop failed") })

	if err := app.RunTask(context.Background(), func(context.Context) error { return taskErr }); !errors.Is(err, taskErr) {
		t.Fatalf("expected task error, got %v", err)
	}
}

func TestRunTask_StopErrorReported(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"), WithLogger(logger.Nop()))
	app.OnStop(func(context.Context) error { return errors.New("flush failed") })

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Fatalf("expected stop error, got %v", err)
	}
}

func TestRunTask_StartHookFailureStillStops(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"), WithLogger(logger.Nop()))
	stopped := false
	app.OnStart(func(context.Context) error { return errors.New("no") })
	app.OnStop(func(context.Context) error { stopped = true; return nil })

	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil || ran {
		t.Fatalf("expected startup failure without running the task, err=%v ran=%v", err, ran)
	}
	if !stopped {
		t.Error("stop hooks should run after a failed startup")
	}
}

func TestRunTask_MetricsWired(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	cfg := newTestConfig("svc")
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithMeterProvider(mp))
	if err != nil {
		t.Fatal(err)
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		if app.Metrics == nil {
			return errors.New("metrics not initialized")
		}
		opts := config.IteratorOptions(app.Cfg.Iterator,
			timeout.WithMetrics[int](app.Metrics),
			timeout.WithLogger[int](app.Logger),
		)
		seq, err := timeout.New(timeout.FromSlice([]int{1, 2, 3}), opts...)
		if err != nil {
			return err
		}
		defer seq.Close()
		for _, err := range seq.All(ctx) {
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var produced int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "lookahead.produced" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				produced += dp.Value
			}
		}
	}
	if produced != 3 {
		t.Errorf("produced = %d, want 3", produced)
	}
}

func TestRunTask_ExportsTelemetry(t *testing.T) {
	tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})

	var mu sync.Mutex
	hits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	endpoint := strings.TrimPrefix(srv.URL, "http://")

	cfg := newTestConfig("svc")
	cfg.Observability.Tracing = config.TracingConfig{Enabled: true, Endpoint: endpoint, Insecure: true, SampleRate: 1}
	cfg.Observability.Metrics = config.MetricsConfig{Enabled: true, Endpoint: endpoint, Insecure: true, Interval: time.Minute}
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithGracefulTimeout(10*time.Second))
	if err != nil {
		t.Fatal(err)
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		opts := config.IteratorOptions(app.Cfg.Iterator,
			timeout.WithMetrics[int](app.Metrics),
			timeout.WithLogger[int](app.Logger),
		)
		seq, err := timeout.New(timeout.FromSlice([]int{1, 2}), opts...)
		if err != nil {
			return err
		}
		defer seq.Close()
		for _, err := range seq.All(ctx) {
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask with telemetry enabled: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits["/v1/traces"] == 0 {
		t.Error("pump span was not exported")
	}
	if hits["/v1/metrics"] == 0 {
		t.Error("iterator metrics were not exported")
	}
}
