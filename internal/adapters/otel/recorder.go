package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/punchclock/internal/ports"
)

const (
	serviceName    = "punchclock"
	serviceVersion = "1.0.0"
)

// Recorder exports tracker events as OTEL metrics.
type Recorder struct {
	provider      *sdkmetric.MeterProvider
	punchIns      metric.Int64Counter
	punchOuts     metric.Int64Counter
	breaks        metric.Int64Counter
	idleTotal     metric.Int64Counter
	workHist      metric.Float64Histogram
	productHist   metric.Float64Histogram
	breakDuration metric.Float64Histogram
}

// NewRecorder creates a recorder that pushes to an OTEL Collector over gRPC.
func NewRecorder(ctx context.Context, cfg Config) (*Recorder, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newRecorder(provider)
}

func newRecorder(provider *sdkmetric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(serviceName)
	r := &Recorder{provider: provider}

	var err error
	if r.punchIns, err = meter.Int64Counter(
		"punchclock_punch_ins_total",
		metric.WithDescription("Sessions opened"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating punch-in counter: %w", err)
	}

	if r.punchOuts, err = meter.Int64Counter(
		"punchclock_punch_outs_total",
		metric.WithDescription("Sessions closed"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating punch-out counter: %w", err)
	}

	if r.breaks, err = meter.Int64Counter(
		"punchclock_breaks_total",
		metric.WithDescription("Breaks started"),
		metric.WithUnit("{break}"),
	); err != nil {
		return nil, fmt.Errorf("creating break counter: %w", err)
	}

	if r.idleTotal, err = meter.Int64Counter(
		"punchclock_idle_ms_total",
		metric.WithDescription("Idle time recorded"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("creating idle counter: %w", err)
	}

	if r.workHist, err = meter.Float64Histogram(
		"punchclock_session_work_minutes",
		metric.WithDescription("Session duration at punch-out"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating work histogram: %w", err)
	}

	if r.productHist, err = meter.Float64Histogram(
		"punchclock_session_productive_minutes",
		metric.WithDescription("Productive time at punch-out"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating productive histogram: %w", err)
	}

	if r.breakDuration, err = meter.Float64Histogram(
		"punchclock_break_minutes",
		metric.WithDescription("Break duration at break end"),
		metric.WithUnit("min"),
	); err != nil {
		return nil, fmt.Errorf("creating break histogram: %w", err)
	}

	return r, nil
}

// RecordEvent records the measurements of a single tracker event.
func (r *Recorder) RecordEvent(ctx context.Context, e *ports.TrackerEvent) error {
	attrs := []attribute.KeyValue{
		attribute.String("employee_id", e.EmployeeID),
	}

	switch e.Kind {
	case ports.EventPunchIn:
		r.punchIns.Add(ctx, 1, metric.WithAttributes(attrs...))
	case ports.EventPunchOut:
		opt := metric.WithAttributes(attrs...)
		r.punchOuts.Add(ctx, 1, opt)
		r.workHist.Record(ctx, e.WorkMinutes, opt)
		r.productHist.Record(ctx, e.ProductiveMinutes, opt)
	case ports.EventBreakStart:
		attrs = append(attrs, attribute.String("break_type", e.BreakType))
		r.breaks.Add(ctx, 1, metric.WithAttributes(attrs...))
	case ports.EventBreakEnd:
		attrs = append(attrs,
			attribute.String("break_type", e.BreakType),
			attribute.Bool("auto_ended", e.AutoEnded),
		)
		r.breakDuration.Record(ctx, e.BreakMinutes, metric.WithAttributes(attrs...))
	case ports.EventIdle:
		r.idleTotal.Add(ctx, e.IdleMs, metric.WithAttributes(attrs...))
	default:
		return fmt.Errorf("unknown tracker event %q", e.Kind)
	}
	return nil
}

// Close shuts down the recorder and flushes any pending metrics.
func (r *Recorder) Close(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
