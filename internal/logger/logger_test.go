package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), " openai ", "gpt-4o-mini").Info("completion")

	entries := observed.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "openai", ctx[FieldProvider])
	assert.Equal(t, "gpt-4o-mini", ctx[FieldModel])

	// nil loggers fall back to a no-op logger
	WithCommonFields(nil, "gemini", "").Info("ignored")
}

func TestCommonFieldsSkipsEmpty(t *testing.T) {
	assert.Empty(t, CommonFields("", "  "))
	assert.Len(t, CommonFields("gemini", ""), 1)
}

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "hello", limit: 0, expect: ""},
		{name: "shorter than limit", input: "hello", limit: 10, expect: "hello"},
		{name: "truncates with ellipsis", input: "hello world", limit: 5, expect: "hello..."},
		{name: "counts runes", input: "héllo wörld", limit: 4, expect: "héll..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}

func TestNewBuildsLogger(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
