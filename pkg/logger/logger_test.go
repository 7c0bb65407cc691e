package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGet(t *testing.T) {
	logger1 := Get()
	require.NotNil(t, logger1)

	logger2 := Get()
	assert.Same(t, logger1, logger2)
}

func TestFromCtx(t *testing.T) {
	ctx := WithCtx(context.Background(), Get())

	loggerFromCtx := FromCtx(ctx)

	assert.Same(t, Get(), loggerFromCtx)

	customLogger := Get().With("custom", "value")
	ctxWithCustomLogger := WithCtx(ctx, customLogger)

	loggerFromCustomCtx := FromCtx(ctxWithCustomLogger)

	assert.Same(t, customLogger, loggerFromCustomCtx)

	withFields := FromCtx(ctxWithCustomLogger, "series", 1)
	assert.NotSame(t, customLogger, withFields)
}

func TestWithCtx(t *testing.T) {
	ctx := context.Background()
	logger := Get()

	newCtx := WithCtx(ctx, logger)

	assert.Same(t, logger, FromCtx(newCtx))
}

func TestWithSameLogger(t *testing.T) {
	ctx := context.Background()
	logger := Get()

	newCtx := WithCtx(ctx, logger)

	assert.Same(t, newCtx, WithCtx(newCtx, logger))
}

func TestWithRun(t *testing.T) {
	ctx := context.Background()

	runCtx, runID := WithRun(ctx, "duplicates")
	assert.NotEmpty(t, runID)
	assert.NotSame(t, Get(), FromCtx(runCtx))

	_, other := WithRun(ctx, "duplicates")
	assert.NotEqual(t, runID, other)
}

func TestBuild(t *testing.T) {
	t.Run("invalid level falls back", func(t *testing.T) {
		l := build(Options{Level: "loud"})
		require.NotNil(t, l)
		assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("debug level", func(t *testing.T) {
		l := build(Options{Level: "debug", JSON: true})
		assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	})
}
