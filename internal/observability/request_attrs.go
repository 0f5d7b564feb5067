package observability

import (
	"context"
	"log/slog"

	"github.com/tanglisha/text-pair/internal/request"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestSpanAttributes builds canonical span attributes from parsed
// alignment request parameters.
func RequestSpanAttributes(route string, params *request.Params) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 8)
	attrs = append(attrs, attribute.String("textpair.route", route))

	if params == nil {
		return attrs
	}

	if params.DBTable != "" {
		attrs = append(attrs, attribute.String("textpair.db_table", params.DBTable))
	}
	if params.Direction != "" {
		attrs = append(attrs, attribute.String("textpair.direction", params.Direction))
	}
	if params.Page > 0 {
		attrs = append(attrs, attribute.Int("textpair.page", params.Page))
	}
	if params.Facet != "" {
		attrs = append(attrs, attribute.String("textpair.facet", params.Facet))
	}
	if params.StatsField != "" {
		attrs = append(attrs, attribute.String("textpair.stats_field", params.StatsField))
	}
	if params.TimeSeriesInterval > 1 {
		attrs = append(attrs, attribute.Int("textpair.interval", params.TimeSeriesInterval))
	}

	return attrs
}

// RequestLogFields builds canonical structured log fields from parsed
// alignment request parameters.
func RequestLogFields(ctx context.Context, route string, params *request.Params) []any {
	fields := make([]any, 0, 6)
	fields = append(fields, slog.String("route", route))

	if params != nil {
		if params.DBTable != "" {
			fields = append(fields, slog.String("db_table", params.DBTable))
		}
		if params.Direction != "" {
			fields = append(fields, slog.String("direction", params.Direction))
		}
		if params.Page > 0 {
			fields = append(fields, slog.Int("page", params.Page))
		}
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		fields = append(fields, slog.String("trace_id", spanCtx.TraceID().String()))
	}

	return fields
}
