package middleware

import (
	"net/http"
	"time"

	"github.com/tanglisha/text-pair/internal/observability"
)

// APIMetricsMiddleware records request counts, durations, and the active
// request gauge for every API route it wraps.
func APIMetricsMiddleware(metrics *observability.APIMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Make metrics reachable from handlers so they can record
			// per-route result counts without extra plumbing.
			ctx := observability.ContextWithAPIMetrics(r.Context(), metrics)
			r = r.WithContext(ctx)

			metrics.IncrementActiveRequests(ctx)
			defer metrics.DecrementActiveRequests(ctx)

			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			// Routes are fixed API paths, so the path is a safe label.
			metrics.RecordRequest(ctx, time.Since(start), r.URL.Path, wrapped.statusCode)
		})
	}
}
