// Package middleware applies cross-cutting HTTP policies like request
// logging, CORS, rate limiting, timeouts, and metrics collection.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tanglisha/text-pair/internal/logging"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the request correlation ID. Inbound values are
// reused; otherwise a fresh UUID is assigned and echoed on the response.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs request start and completion with a request-scoped
// logger that downstream handlers pick up via logging.FromContext.
func LoggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLogger := requestLogger(logger, r, requestID)

			ctx := logging.WithLogger(r.Context(), reqLogger)
			ctx = logging.WithRequestIDContext(ctx, requestID)

			wrapped := newResponseWriter(w)

			reqLogger.Log(ctx, slog.LevelInfo, "request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			reqLogger.Log(r.Context(), statusLevel(wrapped.statusCode), "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", duration),
				slog.Int64("duration_ms", duration.Milliseconds()),
			)
		})
	}
}

// requestLogger stamps the logger with the request ID and, when a span is
// active, the trace and span IDs so log lines correlate with traces.
func requestLogger(logger *logging.Logger, r *http.Request, requestID string) *logging.Logger {
	reqLogger := logger.WithRequestID(requestID).WithFields(slog.String("component", "http"))

	span := trace.SpanFromContext(r.Context())
	if spanCtx := span.SpanContext(); spanCtx.IsValid() {
		span.SetAttributes(attribute.String("http.request_id", requestID))
		reqLogger = reqLogger.WithFields(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return reqLogger
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
