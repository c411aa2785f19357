package log

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// WithConsoleLogger binds a development console logger writing to stderr.
func WithConsoleLogger(
	ctx context.Context,
	level zapcore.Level,
) (context.Context, func() context.Context) {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		level,
	)
	return WithZapLogger(ctx, zap.New(consoleCore))
}

// WithTestLogger binds an in-memory observer logger and returns the observed entries.
func WithTestLogger(
	ctx context.Context,
) (context.Context, func() context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	ctx, teardown := WithZapLogger(ctx, zap.New(core))
	return ctx, teardown, logs
}

// ParseLevel converts a textual level into a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
