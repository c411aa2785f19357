// Package log scopes a zap logger through context.Context.
//
// Computations never own a logger: they pull whatever logger the caller bound
// to the context, and fall back to a no-op logger when none was bound.
package log

import (
	"context"

	"go.uber.org/zap"
)

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// LogPayload is a single structured log record.
type LogPayload struct {
	Level   LogLevel
	Message string
	Fields  map[string]interface{}
}

type loggerKey struct{}

var nop = zap.NewNop()

// WithZapLogger binds logger to the returned context.
// The teardown function syncs the logger and returns the parent context,
// which should be used for further operations.
func WithZapLogger(
	ctx context.Context,
	logger *zap.Logger,
) (context.Context, func() context.Context) {
	if logger == nil {
		logger = nop
	}
	ctxWith := context.WithValue(ctx, loggerKey{}, logger)
	return ctxWith, func() context.Context {
		if err := logger.Sync(); err != nil {
			logger.Debug("failed to sync logger", zap.Error(err))
		}
		return ctx
	}
}

// FromContext returns the logger bound to ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nop
	}
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return nop
}

// Emit writes payload to the logger bound to ctx.
func Emit(ctx context.Context, payload LogPayload) {
	logger := FromContext(ctx)
	fields := make([]zap.Field, 0, len(payload.Fields))
	for k, v := range payload.Fields {
		if err, ok := v.(error); ok {
			fields = append(fields, zap.NamedError(k, err))
			continue
		}
		fields = append(fields, zap.Any(k, v))
	}

	switch payload.Level {
	case LogInfo:
		logger.Info(payload.Message, fields...)
	case LogWarn:
		logger.Warn(payload.Message, fields...)
	case LogError:
		logger.Error(payload.Message, fields...)
	case LogDebug:
		logger.Debug(payload.Message, fields...)
	default:
		logger.Info(payload.Message, fields...)
	}
}

// Log emits a structured record at the given level.
func Log(ctx context.Context, level LogLevel, msg string, fields map[string]interface{}) {
	Emit(ctx, LogPayload{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}
