package log_test

import (
	"context"
	"errors"
	"testing"

	"github.com/on-the-ground/physio_ive_go/log"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestLog_WithTestLogger(t *testing.T) {
	ctx, teardown, logs := log.WithTestLogger(context.Background())
	defer teardown()

	log.Log(ctx, log.LogWarn, "degenerate window", map[string]interface{}{
		"indicator": "TINN",
		"error":     errors.New("len(bins) < 10"),
	})
	log.Log(ctx, log.LogDebug, "cache hit", nil)

	assert.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "TINN", entry.ContextMap()["indicator"])
	assert.Equal(t, "len(bins) < 10", entry.ContextMap()["error"])
	assert.Equal(t, 1, logs.FilterMessage("cache hit").Len())
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		log.Log(context.Background(), log.LogError, "nobody listens", nil)
	})
	assert.NotNil(t, log.FromContext(context.Background()))
}

func TestLog_TeardownReturnsParent(t *testing.T) {
	parent := context.Background()
	_, teardown, _ := log.WithTestLogger(parent)
	assert.Equal(t, parent, teardown())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, log.ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, log.ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, log.ParseLevel("nonsense"))
}
