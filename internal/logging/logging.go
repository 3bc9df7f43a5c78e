// Package logging provides the engine's structured logger. The teacher
// repo has no dedicated logging package of its own (its CLI commands
// print directly with fmt + lipgloss styling, kept as-is in
// cmd/spellbook); for the engine's non-interactive run path this wraps
// go.uber.org/zap, already present in the example corpus's dependency
// graph, rather than reaching for the standard library's plain log
// package.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON-structured logger suitable for a long-running
// generation job: info level by default, debug when SPELLBOOK_DEBUG is
// set to any non-empty value.
func New() *zap.Logger {
	level := zapcore.InfoLevel
	if os.Getenv("SPELLBOOK_DEBUG") != "" {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a malformed
		// encoder config, which the literal above never produces.
		panic(err)
	}
	return logger
}

// Noop returns a logger that discards everything, for tests that don't
// want generation-run noise on stderr.
func Noop() *zap.Logger {
	return zap.NewNop()
}
