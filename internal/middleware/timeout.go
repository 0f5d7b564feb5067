package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tanglisha/text-pair/internal/observability"
)

// TimeoutMiddleware bounds request handling with a per-request deadline.
// Handlers see the deadline through the request context, so database
// queries that honor the context are cancelled when it fires. The optional
// guardMetrics argument enables timeout counting.
func TimeoutMiddleware(timeout time.Duration, guardMetrics ...*observability.GuardMetrics) func(http.Handler) http.Handler {
	if timeout <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	var metrics *observability.GuardMetrics
	if len(guardMetrics) > 0 {
		metrics = guardMetrics[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			if ctx.Err() != context.DeadlineExceeded {
				return
			}

			if metrics != nil {
				// r.Context() is the parent context and is still live here.
				metrics.RecordRequestTimeout(r.Context(), r.URL.Path)
			}

			if !wrapped.written {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = fmt.Fprint(w, `{"error":"request timed out"}`)
			}
		})
	}
}
