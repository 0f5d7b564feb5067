package observability

import (
	"context"
	"testing"

	"github.com/tanglisha/text-pair/internal/request"

	"go.opentelemetry.io/otel/trace"
)

func TestRequestSpanAttributes(t *testing.T) {
	params := &request.Params{
		DBTable:    "dickens_montaigne",
		Direction:  request.DirectionNext,
		Page:       2,
		StatsField: "source_author",
	}

	attrs := RequestSpanAttributes("search_alignments", params)
	if len(attrs) != 5 {
		t.Fatalf("expected 5 span attributes, got %d: %v", len(attrs), attrs)
	}
}

func TestRequestSpanAttributes_NilParams(t *testing.T) {
	attrs := RequestSpanAttributes("list_dbs", nil)
	if len(attrs) != 1 {
		t.Fatalf("expected route attribute only, got %v", attrs)
	}
}

func TestRequestLogFieldsIncludesTraceID(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
		Remote:  true,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	fields := RequestLogFields(ctx, "search_alignments", &request.Params{
		DBTable:   "dickens_montaigne",
		Direction: request.DirectionNext,
		Page:      1,
	})

	if len(fields) != 5 {
		t.Fatalf("expected 5 log fields, got %d: %v", len(fields), fields)
	}
}
