// Package log provides the global structured logger for bookrag.
//
// It is a thin wrapper around zap's sugared logger so that call sites can
// use the familiar Infow/Warnw/Errorw key-value style without carrying a
// logger instance through every constructor.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop().Sugar()
)

// Config controls how the global logger is built.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
	// Development enables development mode (stacktraces on warn, console
	// friendly defaults).
	Development bool
	// DisableCaller disables caller annotation.
	DisableCaller bool
	// OutputPaths are zap output sinks, defaults to stdout.
	OutputPaths []string
	// InitialFields are added to every log entry.
	InitialFields map[string]any
}

// Init builds a zap logger from cfg and installs it as the global logger.
func Init(cfg *Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return err
		}
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format != "" {
		zc.Encoding = cfg.Format
	}
	zc.DisableCaller = cfg.DisableCaller
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	if len(cfg.InitialFields) > 0 {
		zc.InitialFields = cfg.InitialFields
	}

	l, err := zc.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	global = l.Sugar()
	mu.Unlock()
	return nil
}

// L returns the global sugared logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

func Debug(args ...any)                 { L().Debug(args...) }
func Info(args ...any)                  { L().Info(args...) }
func Warn(args ...any)                  { L().Warn(args...) }
func Error(args ...any)                 { L().Error(args...) }
func Debugw(msg string, kv ...any)      { L().Debugw(msg, kv...) }
func Infow(msg string, kv ...any)       { L().Infow(msg, kv...) }
func Warnw(msg string, kv ...any)       { L().Warnw(msg, kv...) }
func Errorw(msg string, kv ...any)      { L().Errorw(msg, kv...) }
func Fatalw(msg string, kv ...any)      { L().Fatalw(msg, kv...) }
func Infof(format string, args ...any)  { L().Infof(format, args...) }
func Errorf(format string, args ...any) { L().Errorf(format, args...) }
