package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/bookverse/bookverse/pkg/config"
	"github.com/bookverse/bookverse/pkg/logging"
)

const (
	instrumentationName = "github.com/bookverse/bookverse"
	serviceVersion      = "0.1.0"
	metricsPath         = "/metrics"
)

var (
	tracer trace.Tracer
)

// Init sets up tracing and metrics for a BookVerse process. Spans are
// exported to Jaeger when a collector URL is configured. Client counters
// are served for Prometheus scraping on the configured port.
func Init(cfg *config.TelemetryConfig) (func(), error) {
	logger := logging.WithComponent("telemetry")
	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		return func() {}, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var shutdownFuncs []func(context.Context) error

	// Traces
	if cfg.JaegerURL != "" {
		tp, err := newTracerProvider(cfg.JaegerURL, res)
		if err != nil {
			return nil, err
		}
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
		logger.Info("Jaeger exporter initialized", zap.String("url", cfg.JaegerURL))
	}

	// Metrics
	if cfg.PrometheusEnabled {
		mp, registry, err := newMeterProvider(res)
		if err != nil {
			return nil, err
		}
		otel.SetMeterProvider(mp)
		srv := serveMetrics(registry, cfg.PrometheusPort, logger)
		shutdownFuncs = append(shutdownFuncs, srv.Shutdown, mp.Shutdown)
		logger.Info("Prometheus metrics served",
			zap.Int("port", cfg.PrometheusPort),
			zap.String("path", metricsPath))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracer = otel.Tracer(cfg.ServiceName)

	return func() { shutdown(shutdownFuncs, logger) }, nil
}

func newTracerProvider(jaegerURL string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerURL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// newMeterProvider registers the otel Prometheus exporter on its own
// registry so the process exposes only BookVerse instruments.
func newMeterProvider(res *resource.Resource) (*metric.MeterProvider, *promclient.Registry, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)
	return mp, registry, nil
}

func metricsHandler(registry *promclient.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}

func serveMetrics(registry *promclient.Registry, port int, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           metricsHandler(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// shutdown flushes exporters in order, giving each a slice of the overall
// deadline.
func shutdown(fns []func(context.Context) error, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, fn := range fns {
		fnCtx, fnCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := fn(fnCtx); err != nil {
			logger.Error("Error shutting down telemetry", zap.Error(err))
		}
		fnCancel()
	}
}

// Tracer returns the global tracer
func Tracer() trace.Tracer {
	if tracer == nil {
		return noop.NewTracerProvider().Tracer("bookverse")
	}
	return tracer
}

// StartSpan starts a new span
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// Meter returns the meter for client-side instruments. It falls back to
// the global no-op provider until Init installs a real one.
func Meter() otelmetric.Meter {
	return otel.Meter(instrumentationName)
}

// Counter creates an int64 counter on the package meter. Instrument
// creation errors are logged and a no-op counter is returned.
func Counter(name, description string) otelmetric.Int64Counter {
	c, err := Meter().Int64Counter(name, otelmetric.WithDescription(description))
	if err != nil {
		logging.GetLogger().Warn("Failed to create counter", zap.String("name", name), zap.Error(err))
		return metricnoop.Int64Counter{}
	}
	return c
}
