package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// APIMetrics holds custom metrics for alignment API operations
type APIMetrics struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	resultsCount    metric.Int64Histogram
}

// InitAPIMetrics initializes API-specific metrics
func InitAPIMetrics() (*APIMetrics, error) {
	meter := otel.Meter("text-pair")

	requestDuration, err := meter.Float64Histogram(
		"textpair.request.duration",
		metric.WithDescription("Duration of API requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	requestCounter, err := meter.Int64Counter(
		"textpair.requests.total",
		metric.WithDescription("Total number of API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	errorCounter, err := meter.Int64Counter(
		"textpair.errors.total",
		metric.WithDescription("Total number of API error responses"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"textpair.requests.active",
		metric.WithDescription("Number of active API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active requests counter: %w", err)
	}

	resultsCount, err := meter.Int64Histogram(
		"textpair.results.count",
		metric.WithDescription("Number of alignments returned per API response"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create results count histogram: %w", err)
	}

	return &APIMetrics{
		requestDuration: requestDuration,
		requestCounter:  requestCounter,
		errorCounter:    errorCounter,
		activeRequests:  activeRequests,
		resultsCount:    resultsCount,
	}, nil
}

// RecordRequest records an API request with its duration and response status
func (m *APIMetrics) RecordRequest(ctx context.Context, duration time.Duration, route string, status int) {
	attrs := []attribute.KeyValue{
		attribute.String("route", route),
		attribute.Int("status", status),
	}

	// Record duration in milliseconds
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	// Increment total request counter
	m.requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Client and server failures both count as errors
	if status >= 400 {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordResultsCount records the number of alignments returned
func (m *APIMetrics) RecordResultsCount(ctx context.Context, count int64, route string) {
	m.resultsCount.Record(ctx, count, metric.WithAttributes(
		attribute.String("route", route),
	))
}

// IncrementActiveRequests increments the active requests counter
func (m *APIMetrics) IncrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, 1)
}

// DecrementActiveRequests decrements the active requests counter
func (m *APIMetrics) DecrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, -1)
}

// InitMetrics initializes all custom metrics and returns the APIMetrics instance
func InitMetrics(logger *slog.Logger) (*APIMetrics, error) {
	metrics, err := InitAPIMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize API metrics: %w", err)
	}

	logger.Info("custom API metrics initialized")
	return metrics, nil
}

type apiMetricsContextKey struct{}

// ContextWithAPIMetrics stores API metrics in the provided context.
func ContextWithAPIMetrics(ctx context.Context, metrics *APIMetrics) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, apiMetricsContextKey{}, metrics)
}

// APIMetricsFromContext retrieves API metrics from the context.
func APIMetricsFromContext(ctx context.Context) *APIMetrics {
	if ctx == nil {
		return nil
	}
	metrics, _ := ctx.Value(apiMetricsContextKey{}).(*APIMetrics)
	return metrics
}
