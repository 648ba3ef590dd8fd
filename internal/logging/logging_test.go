package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsNop(t *testing.T) {
	require.NotNil(t, Logger())
	assert.False(t, Logger().Core().Enabled(zapcore.ErrorLevel))
}

func TestSetLogger(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	Logger().Info("evaluated", zap.String("run_id", "r1"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "r1", logs.All()[0].ContextMap()["run_id"])

	SetLogger(nil)
	assert.NotNil(t, Logger())
}

func TestNewLevels(t *testing.T) {
	for _, tc := range []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
	} {
		t.Run(tc.level, func(t *testing.T) {
			l, err := New(tc.level)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tc.enabled))
			assert.False(t, l.Core().Enabled(tc.muted))
		})
	}

	_, err := New("loud")
	assert.Error(t, err)
}

func TestTrimCaller(t *testing.T) {
	assert.Equal(t, "session/session.go:42", trimCaller("session/session.go:42"))
	long := "fuzzylight/internal/session/session.go:42"
	got := trimCaller(long)
	assert.Len(t, got, callerWidth)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "session.go:42"))
}
