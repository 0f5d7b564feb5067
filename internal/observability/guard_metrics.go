package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GuardMetrics holds metrics for requests rejected or cut off before the
// handler produced a normal response.
type GuardMetrics struct {
	rateLimited     metric.Int64Counter
	requestTimeouts metric.Int64Counter
}

// InitGuardMetrics initializes request guard metrics
func InitGuardMetrics() (*GuardMetrics, error) {
	meter := otel.Meter("text-pair/guard")

	rateLimited, err := meter.Int64Counter(
		"guard.rate_limited.total",
		metric.WithDescription("Total number of requests rejected by the rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limited counter: %w", err)
	}

	requestTimeouts, err := meter.Int64Counter(
		"guard.request_timeouts.total",
		metric.WithDescription("Total number of requests that hit the per-request timeout"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request timeouts counter: %w", err)
	}

	return &GuardMetrics{
		rateLimited:     rateLimited,
		requestTimeouts: requestTimeouts,
	}, nil
}

// RecordRateLimited records a request rejected by the rate limiter
func (m *GuardMetrics) RecordRateLimited(ctx context.Context, path string) {
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
	))
}

// RecordRequestTimeout records a request cut off by the per-request timeout
func (m *GuardMetrics) RecordRequestTimeout(ctx context.Context, path string) {
	m.requestTimeouts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
	))
}
