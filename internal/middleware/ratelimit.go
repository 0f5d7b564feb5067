package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tanglisha/text-pair/internal/observability"
)

// RateLimitConfig controls the process-wide request limiter. Disabled
// by default; deployments behind a proxy usually limit there instead.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// RateLimitMiddleware applies a single shared token bucket to all
// requests. Over-limit requests receive a 429 with a Retry-After hint.
// An optional GuardMetrics records rejections per path.
func RateLimitMiddleware(cfg RateLimitConfig, guardMetrics ...*observability.GuardMetrics) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	var metrics *observability.GuardMetrics
	if len(guardMetrics) > 0 {
		metrics = guardMetrics[0]
	}

	limiter := newTokenBucket(cfg.RPS, cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if metrics != nil {
					metrics.RecordRateLimited(r.Context(), r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = fmt.Fprint(w, `{"error":"rate limit exceeded"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// tokenBucket refills continuously at rate tokens per second, capped at
// burst. A zero rate or burst leaves the bucket permissive.
type tokenBucket struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
}

func newTokenBucket(rps float64, burst int) *tokenBucket {
	b := &tokenBucket{last: time.Now()}
	if rps > 0 && burst > 0 {
		b.rate = rps
		b.burst = float64(burst)
		b.tokens = float64(burst)
	}
	return b
}

// Allow consumes one token if available.
func (b *tokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rate <= 0 || b.burst <= 0 {
		return true
	}

	now := time.Now()
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.burst, b.tokens+elapsed*b.rate)
		b.last = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
