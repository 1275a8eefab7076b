package log

import (
	"context"
	"sync/atomic"
)

var global atomic.Pointer[Logger]

//nolint:gochecknoinits // default logger so early logging never panics.
func init() {
	global.Store(New(Config{Name: "tenanthub"}))
}

// SetGlobalConfig replaces the global logger with one built from cfg.
// Hooks registered on the previous logger are carried over.
func SetGlobalConfig(cfg Config) {
	prev := global.Load()
	next := New(cfg)

	prev.mu.RLock()
	next.hooks = append(next.hooks, prev.hooks...)
	prev.mu.RUnlock()

	global.Store(next)
}

// SetDefault replaces the global logger.
func SetDefault(logger *Logger) {
	global.Store(logger)
}

// GetGlobalLogger returns the global logger.
func GetGlobalLogger() *Logger {
	return global.Load()
}

func DebugEnabled(ctx context.Context) bool {
	return global.Load().DebugEnabled(ctx)
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	global.Load().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	global.Load().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	global.Load().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	global.Load().Error(ctx, msg, fields...)
}
