package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "true")
	t.Setenv("TRACE_OUTPUT", "/tmp/spans.json")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")

	cfg := LoadConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "/tmp/spans.json", cfg.Output)
	assert.Equal(t, 0.25, cfg.SampleRatio)

	t.Setenv("TRACE_SAMPLE_RATIO", "7")
	assert.Equal(t, 1.0, LoadConfigFromEnv().SampleRatio, "out of range ratio falls back to 1")
}

func TestDisabledTracingIsNoop(t *testing.T) {
	require.NoError(t, InitWithConfig(Config{Enabled: false}))
	assert.False(t, Enabled())

	ctx, span := StartSpan(context.Background(), "noop")
	span.End()
	_, _, ok := GetTraceFields(ctx)
	assert.False(t, ok)
}

func TestSpansWrittenToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "spans.json")
	require.NoError(t, InitWithConfig(Config{Enabled: true, Output: out, SampleRatio: 1}))
	assert.True(t, Enabled())

	ctx, span := StartSpan(context.Background(), "decision.analyze")
	traceID, spanID, ok := GetTraceFields(ctx)
	require.True(t, ok)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
	span.End()

	require.NoError(t, Shutdown(context.Background()))
	assert.False(t, Enabled())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "decision.analyze")
	assert.Contains(t, string(b), traceID)
}
