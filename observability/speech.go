package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SpeechMetrics holds instruments specific to the transcription pipeline.
type SpeechMetrics struct {
	transcriptionTotal    metric.Int64Counter
	transcriptionDuration metric.Float64Histogram
	confidence            metric.Float64Histogram
	modelLoadTotal        metric.Int64Counter
}

// NewSpeechMetrics creates transcription instruments on the given meter.
func NewSpeechMetrics(meter metric.Meter) (*SpeechMetrics, error) {
	transcriptionTotal, err := meter.Int64Counter("transcription.total",
		metric.WithDescription("Total number of transcription requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.total counter: %w", err)
	}

	transcriptionDuration, err := meter.Float64Histogram("transcription.duration",
		metric.WithDescription("Duration of transcription requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.duration histogram: %w", err)
	}

	confidence, err := meter.Float64Histogram("transcription.confidence",
		metric.WithDescription("Estimated transcription confidence"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.confidence histogram: %w", err)
	}

	modelLoadTotal, err := meter.Int64Counter("transcription.model_load.total",
		metric.WithDescription("Model load attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.model_load.total counter: %w", err)
	}

	return &SpeechMetrics{
		transcriptionTotal:    transcriptionTotal,
		transcriptionDuration: transcriptionDuration,
		confidence:            confidence,
		modelLoadTotal:        modelLoadTotal,
	}, nil
}

// RecordTranscription records a completed transcription request.
func (m *SpeechMetrics) RecordTranscription(ctx context.Context, modelSize, status string, confidence float64, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("model_size", modelSize),
		attribute.String("status", status),
	)
	m.transcriptionTotal.Add(ctx, 1, attrs)
	m.transcriptionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("model_size", modelSize),
	))
	if status == "ok" {
		m.confidence.Record(ctx, confidence, metric.WithAttributes(
			attribute.String("model_size", modelSize),
		))
	}
}

// RecordModelLoad records a model load attempt.
func (m *SpeechMetrics) RecordModelLoad(ctx context.Context, modelSize, status string) {
	m.modelLoadTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model_size", modelSize),
		attribute.String("status", status),
	))
}
