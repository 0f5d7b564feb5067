package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures records for assertions. Handler-level attrs are
// folded into each captured record so tests can see them.
type recordingHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{records: &[]slog.Record{}}
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	clone := r.Clone()
	clone.AddAttrs(h.attrs...)
	*h.records = append(*h.records, clone)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &recordingHandler{records: h.records, attrs: merged}
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestTeeHandler_FansOut(t *testing.T) {
	a := newRecordingHandler()
	b := newRecordingHandler()
	logger := slog.New(newTeeHandler(a, b))

	logger.Info("page served", slog.Int("rows", 50))

	require.Len(t, *a.records, 1)
	require.Len(t, *b.records, 1)
	assert.Equal(t, "page served", (*a.records)[0].Message)
}

func TestTeeHandler_EnabledWhenAnyHandlerIs(t *testing.T) {
	quiet := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	tee := newTeeHandler(quiet, newRecordingHandler())

	assert.True(t, tee.Enabled(context.Background(), slog.LevelInfo))
}

func TestWithRequestID_StampsRecords(t *testing.T) {
	h := newRecordingHandler()
	logger := (&Logger{Logger: slog.New(h)}).WithRequestID("req-123")

	logger.Info("lookup complete")

	require.Len(t, *h.records, 1)
	found := false
	(*h.records)[0].Attrs(func(a slog.Attr) bool {
		if a.Key == "request_id" && a.Value.String() == "req-123" {
			found = true
			return false
		}
		return true
	})
	assert.True(t, found)
}

func TestLoggerContextRoundTrip(t *testing.T) {
	base := &Logger{Logger: slog.Default()}
	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.NotNil(t, fallback.Logger)
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := WithRequestIDContext(context.Background(), "abc-1")
	assert.Equal(t, "abc-1", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}
