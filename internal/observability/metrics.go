// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "taskplane"

// Metrics records remote call outcomes and discarded stale responses.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	provider *metric.MeterProvider

	requests       otelmetric.Int64Counter
	duration       otelmetric.Float64Histogram
	staleResponses otelmetric.Int64Counter
}

// NewMetrics creates a meter provider whose Prometheus exporter registers
// with reg, and the instruments on it.
func NewMetrics(reg promclient.Registerer) (*Metrics, error) {
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(reg),
		prometheus.WithoutScopeInfo(),
		prometheus.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
	)
	meter := provider.Meter(meterName)

	m := &Metrics{provider: provider}
	m.requests, err = meter.Int64Counter("taskplane_client_requests",
		otelmetric.WithDescription("Remote calls issued to the task service, by operation and outcome."))
	if err != nil {
		return nil, err
	}
	m.duration, err = meter.Float64Histogram("taskplane_client_request_duration",
		otelmetric.WithDescription("Latency of remote calls to the task service."),
		otelmetric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	m.staleResponses, err = meter.Int64Counter("taskplane_console_stale_responses",
		otelmetric.WithDescription("Responses dropped because a newer request or selection superseded them."))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// InitMetrics initializes the OpenTelemetry metrics provider with a Prometheus exporter
// on a private registry and installs it as the global meter provider.
// It returns the metrics and the HTTP handler for the /metrics endpoint.
// Call Shutdown on the metrics on application exit.
func InitMetrics() (*Metrics, http.Handler, error) {
	reg := promclient.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}

	otel.SetMeterProvider(m.provider)

	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), nil
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// ObserveRequest records one remote call.
func (m *Metrics) ObserveRequest(ctx context.Context, op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	m.duration.Record(ctx, elapsed.Seconds(), otelmetric.WithAttributes(attribute.String("op", op)))
}

// ObserveStale records a dropped response for the given query.
func (m *Metrics) ObserveStale(ctx context.Context, query string) {
	if m == nil {
		return
	}
	m.staleResponses.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("query", query)))
}
