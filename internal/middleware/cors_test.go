package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// doCORS sends a request with the given Origin through the middleware and
// returns the recorder. Preflights must be answered by the middleware, so
// the inner handler flags any OPTIONS request that leaks through.
func doCORS(t *testing.T, cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	handler := CORSMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			t.Error("preflight should never reach the handler")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/search_alignments/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestCORSMiddleware(t *testing.T) {
	const localhost = "http://localhost:3000"

	tests := []struct {
		name        string
		cfg         CORSConfig
		method      string
		origin      string
		wantStatus  int
		wantHeaders map[string]string
	}{
		{
			name:        "disabled passes through",
			cfg:         CORSConfig{Enabled: false},
			method:      http.MethodGet,
			origin:      "http://example.com",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name: "allowed origin echoed with vary",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{localhost},
				AllowedMethods: []string{"GET", "POST"},
				AllowedHeaders: []string{"Content-Type"},
			},
			method:     http.MethodGet,
			origin:     localhost,
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin": localhost,
				"Vary":                        "Origin",
			},
		},
		{
			name: "preflight answered without handler",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{localhost},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
				MaxAge:         3600,
			},
			method:     http.MethodOptions,
			origin:     localhost,
			wantStatus: http.StatusNoContent,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin":  localhost,
				"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization",
				"Access-Control-Max-Age":       "3600",
			},
		},
		{
			name: "unknown origin gets no grant",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{localhost},
			},
			method:      http.MethodGet,
			origin:      "http://malicious.com",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name: "preflight from unknown origin still ends at 204",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{localhost},
			},
			method:      http.MethodOptions,
			origin:      "http://malicious.com",
			wantStatus:  http.StatusNoContent,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name: "wildcard serves any origin without vary",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST"},
			},
			method:     http.MethodGet,
			origin:     "http://any-origin.com",
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Origin": "*",
				"Vary":                        "",
			},
		},
		{
			name: "credentials flagged for named origins",
			cfg: CORSConfig{
				Enabled:          true,
				AllowedOrigins:   []string{localhost},
				AllowedMethods:   []string{"GET", "POST"},
				AllowCredentials: true,
			},
			method:     http.MethodGet,
			origin:     localhost,
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Allow-Credentials": "true",
			},
		},
		{
			name: "expose headers forwarded",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{localhost},
				ExposeHeaders:  []string{"X-Request-ID", "X-Custom-Header"},
			},
			method:     http.MethodGet,
			origin:     localhost,
			wantStatus: http.StatusOK,
			wantHeaders: map[string]string{
				"Access-Control-Expose-Headers": "X-Request-ID, X-Custom-Header",
			},
		},
		{
			name: "configured origins trimmed",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"", "  http://localhost:3000  "},
			},
			method:      http.MethodGet,
			origin:      localhost,
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": localhost},
		},
		{
			name: "no origin header means no grant",
			cfg: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
			},
			method:      http.MethodGet,
			origin:      "",
			wantStatus:  http.StatusOK,
			wantHeaders: map[string]string{"Access-Control-Allow-Origin": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doCORS(t, tt.cfg, tt.method, tt.origin)
			assert.Equal(t, tt.wantStatus, rr.Code)
			for header, want := range tt.wantHeaders {
				assert.Equal(t, want, rr.Header().Get(header), header)
			}
		})
	}
}
