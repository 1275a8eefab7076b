package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger with context-aware hooks.
// Hooks can derive extra fields from the context, e.g. trace and request ids.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel

	mu    sync.RWMutex
	hooks []Hook
}

// New creates a logger from the given config.
func New(cfg Config) *Logger {
	cfg = cfg.withDefaults()

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if cfg.Name != "" {
		zl = zl.Named(cfg.Name)
	}

	return &Logger{
		zap:   zl,
		level: level,
	}
}

// AddHook registers a hook applied to every entry.
func (l *Logger) AddHook(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hooks = append(l.hooks, hook)
}

// With returns a logger with the given fields attached to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	l.mu.RLock()
	hooks := make([]Hook, len(l.hooks))
	copy(hooks, l.hooks)
	l.mu.RUnlock()

	return &Logger{
		zap:   l.zap.With(fields...),
		level: l.level,
		hooks: hooks,
	}
}

// DebugEnabled reports whether debug entries are emitted.
func (l *Logger) DebugEnabled(ctx context.Context) bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields []Field) {
	if !l.level.Enabled(level) {
		return
	}

	l.mu.RLock()
	for _, hook := range l.hooks {
		fields = hook.Apply(ctx, msg, fields...)
	}
	l.mu.RUnlock()

	switch level {
	case zapcore.DebugLevel:
		l.zap.Debug(msg, fields...)
	case zapcore.InfoLevel:
		l.zap.Info(msg, fields...)
	case zapcore.WarnLevel:
		l.zap.Warn(msg, fields...)
	default:
		l.zap.Error(msg, fields...)
	}
}
