package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jobmatcher/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig is the flattened subset of settings the manager needs
// at construction time.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds the service's custom instruments. Pipeline metrics cover
// the matching pipeline itself; the rest cover the serving infrastructure.
type Metrics struct {
	PipelineDuration   metric.Float64Histogram
	PipelineRunCount   metric.Int64Counter
	PipelineErrorCount metric.Int64Counter

	ResumesParsed   metric.Int64Counter
	MatchesComputed metric.Int64Counter

	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	RateLimitHits metric.Int64Counter
}

// ObservabilityManager owns the OpenTelemetry providers and the custom
// instruments built on them.
type ObservabilityManager struct {
	config         ObservabilityConfig
	fullConfig     *config.Config
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewObservabilityManager wires tracing and metrics per the configuration.
// With observability disabled the manager is inert: middleware and tracers
// become no-ops and Shutdown has nothing to do.
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}
	if !obsConfig.Enabled {
		return om, nil
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("tracing init: %w", err)
	}
	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("metrics init: %w", err)
	}
	return om, nil
}

// GetMetrics returns the custom instruments. Never nil; an uninitialized
// manager yields zero-valued instruments that record nowhere.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware instruments inbound requests with otelhttp.
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}
	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a named tracer, or a no-op one when disabled.
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown flushes and stops every provider that was started.
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.otlpEnabled():
		exporter, err = otlptracehttp.New(context.Background(), om.otlpTraceOptions()...)
	default:
		// Spans still feed the context propagation machinery; they just
		// are not exported anywhere.
		exporter = discardSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("trace exporter: %w", err)
	}

	res, err := om.buildResource()
	if err != nil {
		return fmt.Errorf("otel resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.buildMetricReaders()
	if err != nil {
		return err
	}

	res, err := om.buildResource()
	if err != nil {
		return fmt.Errorf("otel resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.registerInstruments()
}

// buildMetricReaders assembles one reader per configured sink: stdout for
// development, OTLP push, and the Prometheus scrape endpoint. With nothing
// configured a manual reader keeps the provider functional.
func (om *ObservabilityManager) buildMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("console metric exporter: %w", err)
		}
		readers = append(readers,
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.collectionInterval())))
	}

	if om.otlpEnabled() {
		exporter, err := otlpmetrichttp.New(context.Background(), om.otlpMetricOptions()...)
		if err != nil {
			return nil, fmt.Errorf("OTLP metric exporter: %w", err)
		}
		readers = append(readers,
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.collectionInterval())))
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, err
		}
		if reader != nil {
			readers = append(readers, reader)
			if err := StartPrometheusServer(mux, om.config.Prometheus.Port); err != nil {
				return nil, fmt.Errorf("prometheus scrape server: %w", err)
			}
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// registerInstruments creates every custom instrument on the service meter.
func (om *ObservabilityManager) registerInstruments() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	var err error
	om.metrics.PipelineDuration, err = meter.Float64Histogram(
		"jobmatcher_pipeline_duration_seconds",
		metric.WithDescription("Time spent running matching pipeline operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("register pipeline duration histogram: %w", err)
	}

	om.metrics.CertExpiryTime, err = meter.Float64Gauge(
		"jobmatcher_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("register cert expiry gauge: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&om.metrics.PipelineRunCount, "jobmatcher_pipeline_runs_total", "Total number of pipeline operations"},
		{&om.metrics.PipelineErrorCount, "jobmatcher_pipeline_errors_total", "Total number of pipeline operation errors"},
		{&om.metrics.ResumesParsed, "jobmatcher_resumes_parsed_total", "Total number of resumes parsed into structured facts"},
		{&om.metrics.MatchesComputed, "jobmatcher_matches_computed_total", "Total number of resume/job match reports computed"},
		{&om.metrics.CertReloadCount, "jobmatcher_cert_reloads_total", "Total number of certificate reloads"},
		{&om.metrics.RateLimitHits, "jobmatcher_rate_limit_hits_total", "Total number of rate limit hits"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.description))
		if err != nil {
			return fmt.Errorf("register counter %s: %w", c.name, err)
		}
	}
	return nil
}

func (om *ObservabilityManager) buildResource() (*resource.Resource, error) {
	instanceID := "jobmatcher-1"
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		instanceID = om.fullConfig.Observability.ServiceInstance
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", instanceID),
		),
	)
}

func (om *ObservabilityManager) otlpEnabled() bool {
	return om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled
}

func (om *ObservabilityManager) otlpTraceOptions() []otlptracehttp.Option {
	otlp := om.fullConfig.Observability.OTLP
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}
	return opts
}

func (om *ObservabilityManager) otlpMetricOptions() []otlpmetrichttp.Option {
	otlp := om.fullConfig.Observability.OTLP
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
	}
	return opts
}

func (om *ObservabilityManager) collectionInterval() time.Duration {
	if om.fullConfig != nil {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}

// TrackPipelineOperation runs fn inside a span and records duration and
// run/error counts, honoring the custom-metrics toggles.
func (m *Metrics) TrackPipelineOperation(ctx context.Context, operation string, fn func(context.Context) error, om *ObservabilityManager) error {
	if m.PipelineDuration == nil {
		return fn(ctx)
	}

	tracer := otel.Tracer("jobmatcher.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	cfg := om.fullConfig
	if cfg == nil || cfg.Observability.CustomMetrics.Pipeline.Enabled {
		attrs := []attribute.KeyValue{
			attribute.String("operation", operation),
			attribute.Bool("success", err == nil),
		}
		if cfg == nil || cfg.Observability.CustomMetrics.Pipeline.TrackDuration {
			m.PipelineDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		}
		m.PipelineRunCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		if err != nil {
			m.PipelineErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
		span.SetAttributes(attrs...)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	return err
}

// RecordBusinessMetric bumps the counter named by metricType. Unknown names
// are ignored; infrastructure metrics honor their own toggle.
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, om *ObservabilityManager, attributes ...attribute.KeyValue) {
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled {
		return
	}

	attrs := append([]attribute.KeyValue{attribute.Bool("success", success)}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case "resume_parsed":
		counter = m.ResumesParsed
	case "match_computed":
		counter = m.MatchesComputed
	case "rate_limit_hit":
		if om != nil && om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.Infrastructure.TrackRateLimits {
			return
		}
		counter = m.RateLimitHits
	}
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// discardSpanExporter drops spans when no export sink is configured.
type discardSpanExporter struct{}

func (discardSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }

func (discardSpanExporter) Shutdown(context.Context) error { return nil }
