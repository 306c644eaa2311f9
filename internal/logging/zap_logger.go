package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vysogota0399/fintech_dashboard/internal/config"
)

type ctxFieldsKey struct{}

// ZapLogger wraps zap.Logger and appends fields stored in the context by
// WithContextFields to every record.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

func NewZapLogger(cfg *config.Config) (*ZapLogger, error) {
	atomic := zap.NewAtomicLevelAt(zapcore.Level(cfg.LogLevel))
	settings := zap.Config{
		Level:            atomic,
		Encoding:         "json",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	l, err := settings.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: l, level: atomic}, nil
}

// NewFromZap is used where a zap.Logger already exists, e.g. zaptest in tests.
func NewFromZap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: l, level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func (z *ZapLogger) Logger() *zap.Logger {
	return z.logger
}

func (z *ZapLogger) WithContextFields(ctx context.Context, fields ...zap.Field) context.Context {
	ctxFields, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)

	merged := make([]zap.Field, 0, len(ctxFields)+len(fields))
	merged = append(merged, ctxFields...)
	merged = append(merged, fields...)

	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

func (z *ZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.logCtx(ctx, zapcore.DebugLevel, msg, fields...)
}

func (z *ZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.logCtx(ctx, zapcore.InfoLevel, msg, fields...)
}

func (z *ZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.logCtx(ctx, zapcore.WarnLevel, msg, fields...)
}

func (z *ZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	z.logCtx(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

func (z *ZapLogger) logCtx(ctx context.Context, lvl zapcore.Level, msg string, fields ...zap.Field) {
	if !z.level.Enabled(lvl) {
		return
	}

	ctxFields, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)
	z.logger.Log(lvl, msg, append(ctxFields, fields...)...)
}
