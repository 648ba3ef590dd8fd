// Package logging builds zap loggers and holds the process-wide logger.
package logging

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const callerWidth = 30

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

func Logger() *zap.Logger { return logger.Load() }

// SetLogger replaces the process-wide logger; nil installs a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// New builds a development-style console logger at the given level
// ("debug", "info", "warn" or "error").
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeCaller = encodeCaller
	c.Level = zap.NewAtomicLevelAt(lvl)
	return c.Build()
}

func encodeCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%*s", callerWidth, trimCaller(caller.TrimmedPath())))
}

func trimCaller(p string) string {
	if len(p) > callerWidth {
		p = "..." + p[len(p)-(callerWidth-3):]
	}
	return p
}
