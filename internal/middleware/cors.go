package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin resource sharing. The shipped default
// allows any origin so browser front ends can query the API directly.
type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// corsPolicy is the precomputed form of CORSConfig: header values joined
// once, origin lookup a map hit per request.
type corsPolicy struct {
	allowAll         bool
	origins          map[string]struct{}
	methods          string
	headers          string
	expose           string
	maxAge           string
	allowCredentials bool
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins:          make(map[string]struct{}),
		methods:          strings.Join(cfg.AllowedMethods, ", "),
		headers:          strings.Join(cfg.AllowedHeaders, ", "),
		expose:           strings.Join(cfg.ExposeHeaders, ", "),
		allowCredentials: cfg.AllowCredentials,
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			p.allowAll = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// allowed reports whether origin may reach the API and the value to echo in
// Access-Control-Allow-Origin.
func (p *corsPolicy) allowed(origin string) (string, bool) {
	if p.allowAll {
		return "*", true
	}
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	return "", false
}

// CORSMiddleware adds CORS headers and answers preflight requests.
// Preflights always terminate here with 204; disallowed origins get no CORS
// headers back.
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	policy := newCORSPolicy(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			echo, ok := policy.allowed(origin)
			if ok {
				w.Header().Set("Access-Control-Allow-Origin", echo)
				if !policy.allowAll {
					w.Header().Add("Vary", "Origin")
					if policy.allowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				}
				if policy.expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", policy.expose)
				}
			}

			if r.Method == http.MethodOptions {
				if ok {
					if policy.methods != "" {
						w.Header().Set("Access-Control-Allow-Methods", policy.methods)
					}
					if policy.headers != "" {
						w.Header().Set("Access-Control-Allow-Headers", policy.headers)
					}
					if policy.maxAge != "" {
						w.Header().Set("Access-Control-Max-Age", policy.maxAge)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
