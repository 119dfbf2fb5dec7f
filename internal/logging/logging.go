// Package logging builds the zap loggers used across the simulator.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Off is the pseudo-level that disables logging entirely.
const Off = "off"

// ParseLevel maps a level name to a zap level. Off maps to a level above
// Fatal so nothing is enabled.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case Off:
		return zapcore.FatalLevel + 1, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q (want debug|info|warn|error|off)", name)
}

// New returns a logger writing to stderr at the named level. Development
// mode switches to the human-readable console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(level, Off) {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !development
	return cfg.Build()
}

// Must is New for callers that have already validated the level.
func Must(level string, development bool) *zap.Logger {
	l, err := New(level, development)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
