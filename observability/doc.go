// Package observability provides OpenTelemetry tracing and metrics for
// lookahead sequences.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("lookahead"))
//	defer tp.Shutdown(ctx)
//
// Every producer pump runs inside a span named SpanPump; the span ends when
// the pump stops and records the source error, if any.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("lookahead"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewIteratorMetrics(observability.Meter("lookahead"))
//	seq, err := timeout.New(src, timeout.WithMetrics[string](metrics))
//
// All IteratorMetrics methods are nil-safe, so a sequence built without
// metrics records nothing.
package observability
