package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tanglisha/text-pair/internal/logging"
)

// capturingHandler records log output for assertions. Handler-level attrs
// are folded into each captured record so fields added through WithFields
// stay visible.
type capturingHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	clone := r.Clone()
	clone.AddAttrs(h.attrs...)
	*h.records = append(*h.records, clone)
	return nil
}

func (h *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &capturingHandler{records: h.records, attrs: merged}
}

func (h *capturingHandler) WithGroup(string) slog.Handler { return h }

func TestHandlers_AnnotateActiveSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	tp.RegisterSpanProcessor(recorder)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	mux, mock := newTestMux(t)
	expectCatalog(mock, testTable)

	ctx, span := tp.Tracer("api-test").Start(context.Background(), "GET /metadata/")
	req := httptest.NewRequest(http.MethodGet, "/metadata/?db_table="+testTable, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req.WithContext(ctx))
	span.End()

	require.Equal(t, http.StatusOK, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := make(map[string]string, len(spans[0].Attributes()))
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "/metadata/", attrs["textpair.route"])
	assert.Equal(t, testTable, attrs["textpair.db_table"])
	assert.Equal(t, "next", attrs["textpair.direction"])
	assert.Equal(t, "1", attrs["textpair.page"])
}

func TestParseRequest_EnrichesContextLogger(t *testing.T) {
	records := []slog.Record{}
	logger := &logging.Logger{Logger: slog.New(&capturingHandler{records: &records})}

	req := httptest.NewRequest(http.MethodGet, "/count_results/?db_table="+testTable+"&source_author=Dickens", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logger))

	ctx, params, filters, err := parseRequest(req)
	require.NoError(t, err)
	assert.Equal(t, testTable, params.DBTable)
	assert.Equal(t, "Dickens", filters["source_author"])

	logging.FromContext(ctx).Info("counting rows")

	require.Len(t, records, 1)
	fields := make(map[string]string)
	records[0].Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.String()
		return true
	})
	assert.Equal(t, "/count_results/", fields["route"])
	assert.Equal(t, testTable, fields["db_table"])
	assert.Equal(t, "next", fields["direction"])
}

func TestParseRequest_ErrorLeavesContextUntouched(t *testing.T) {
	logger := &logging.Logger{Logger: slog.Default()}

	req := httptest.NewRequest(http.MethodGet, "/count_results/?db_table=%zz", nil)
	base := logging.WithLogger(req.Context(), logger)
	req = req.WithContext(base)

	ctx, _, _, err := parseRequest(req)
	require.Error(t, err)
	assert.Same(t, logger, logging.FromContext(ctx))
}
