package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WithContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := NewFromZap(zap.New(core))

	ctx := lg.WithContextFields(context.Background(), zap.String("name", "generator"))
	ctx = lg.WithContextFields(ctx, zap.Int("worker_id", 2))

	lg.InfoCtx(ctx, "batch loaded", zap.Int64("rows", 1000))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "batch loaded", entries[0].Message)
		assert.Equal(t, "generator", fields["name"])
		assert.Equal(t, int64(2), fields["worker_id"])
		assert.Equal(t, int64(1000), fields["rows"])
	}
}

func TestZapLogger_LevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := &ZapLogger{logger: zap.New(core), level: zap.NewAtomicLevelAt(zapcore.WarnLevel)}

	lg.DebugCtx(context.Background(), "hidden")
	lg.InfoCtx(context.Background(), "hidden")
	lg.WarnCtx(context.Background(), "shown")
	lg.ErrorCtx(context.Background(), "shown")

	assert.Equal(t, 2, logs.Len())
}
