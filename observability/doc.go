// Package observability provides OpenTelemetry tracing and metrics for the
// speechkit services, plus the health model used by readiness probes.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("sttd"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("sttd"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewSpeechMetrics(observability.Meter("sttd"))
//	metrics.RecordTranscription(ctx, "tiny", "ok", confidence, duration)
//
// Health:
//
//	health := observability.NewServiceHealth("sttd", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability
