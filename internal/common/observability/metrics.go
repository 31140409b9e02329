package observability

import (
	"context"
	"time"

	"staff-assistant/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records pipeline stage timings through an otel meter that is
// exported on the default prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	stageDuration otelmetric.Float64Histogram
	answers       otelmetric.Int64Counter
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Prometheus exporter unavailable, pipeline metrics disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	stageDuration, _ := meter.Float64Histogram(
		"pipeline.stage.duration",
		otelmetric.WithDescription("Duration of a question pipeline stage"),
		otelmetric.WithUnit("ms"),
	)
	answers, _ := meter.Int64Counter(
		"pipeline.answers",
		otelmetric.WithDescription("Answers produced by the pipeline"),
	)

	return &Observability{
		meterProvider: provider,
		stageDuration: stageDuration,
		answers:       answers,
	}
}

// RecordStage records the duration of one stage (parse, compile, query, render).
func (o *Observability) RecordStage(ctx context.Context, stage string, duration time.Duration, ok bool) {
	if o == nil || o.stageDuration == nil {
		return
	}
	o.stageDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("ok", ok),
	))
}

func (o *Observability) RecordAnswer(ctx context.Context, intent, outcome string) {
	if o == nil || o.answers == nil {
		return
	}
	o.answers.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
