package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestSetupAddsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Service: "pos-core", Version: "1.2.0", Environment: "test", Level: "debug", Output: &buf})

	Debug(context.Background()).Str("product_id", "101").Msg("stock changed")

	entry := lastLine(t, &buf)
	assert.Equal(t, "pos-core", entry["service"])
	assert.Equal(t, "1.2.0", entry["version"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "101", entry["product_id"])
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Service: "pos-core", Level: "chatty", Output: &buf})

	Debug(context.Background()).Msg("hidden")
	assert.Zero(t, buf.Len())

	Info(context.Background()).Msg("shown")
	assert.Equal(t, "shown", lastLine(t, &buf)["message"])
}

func TestFromContextCarriesRequestAndTrace(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Service: "pos-core", Output: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = trace.ContextWithSpanContext(ctx, sc)
	Warn(ctx).Msg("mirror write failed")

	entry := lastLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, traceID.String(), entry["trace_id"])
	assert.Equal(t, spanID.String(), entry["span_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}
