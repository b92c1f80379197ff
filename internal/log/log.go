// Package log provides categorized structured logging for Freelog.
//
// Every call names a Category so log lines can be filtered per subsystem:
//
//	log.Info(log.CatDB, "Database initialized", "path", path)
//	log.ErrorErr(log.CatHTTP, "Failed to encode response", err)
//
// The package is backed by zap. Until Init is called all calls are no-ops,
// which keeps tests quiet.
package log

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem a log line belongs to.
type Category string

const (
	CatApp      Category = "app"
	CatConfig   Category = "config"
	CatDB       Category = "db"
	CatHTTP     Category = "http"
	CatAuth     Category = "auth"
	CatProjects Category = "projects"
	CatFinance  Category = "finance"
	CatBriefs   Category = "briefs"
	CatStorage  Category = "storage"
	CatTracing  Category = "tracing"
)

// Options configures the global logger.
type Options struct {
	Level       string // debug, info, warn, error
	JSON        bool   // JSON output instead of console encoding
	OutputPaths []string
}

var (
	mu     sync.RWMutex
	logger = zap.NewNop().Sugar()
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the global logger. It may be called more than once; the last
// call wins.
func Init(opts Options) error {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)

	cfg := zap.NewProductionConfig()
	if !opts.JSON {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = level
	cfg.DisableStacktrace = true
	if len(opts.OutputPaths) > 0 {
		cfg.OutputPaths = opts.OutputPaths
	}

	z, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	logger = z.Sugar()
	mu.Unlock()
	return nil
}

// SetLevel adjusts the level of the running logger without rebuilding it.
func SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)
	return nil
}

// ParseLevel maps a level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func withCategory(cat Category, kv []any) []any {
	return append([]any{"cat", string(cat)}, kv...)
}

// Debug logs at debug level.
func Debug(cat Category, msg string, kv ...any) {
	logAt(zapcore.DebugLevel, cat, msg, kv)
}

// Info logs at info level.
func Info(cat Category, msg string, kv ...any) {
	logAt(zapcore.InfoLevel, cat, msg, kv)
}

// Warn logs at warn level.
func Warn(cat Category, msg string, kv ...any) {
	logAt(zapcore.WarnLevel, cat, msg, kv)
}

// Error logs at error level.
func Error(cat Category, msg string, kv ...any) {
	logAt(zapcore.ErrorLevel, cat, msg, kv)
}

// ErrorErr logs at error level with err attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	logAt(zapcore.ErrorLevel, cat, msg, append(kv, "error", err))
}

func logAt(lvl zapcore.Level, cat Category, msg string, kv []any) {
	l := current()
	switch lvl {
	case zapcore.DebugLevel:
		l.Debugw(msg, withCategory(cat, kv)...)
	case zapcore.InfoLevel:
		l.Infow(msg, withCategory(cat, kv)...)
	case zapcore.WarnLevel:
		l.Warnw(msg, withCategory(cat, kv)...)
	default:
		l.Errorw(msg, withCategory(cat, kv)...)
	}
}
