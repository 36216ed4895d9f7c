// --- File: default.go ---
package dailylog

import (
	"sync"
)

// Global instance for package-level functions
var (
	defaultMu       sync.RWMutex
	defaultPipeline *Pipeline
)

// Default package-level functions that delegate to the default pipeline

// Init starts the default pipeline from built-in defaults and key=value
// overrides. It fails if a default pipeline is already running.
func Init(overrides ...string) error {
	cfg := DefaultConfig()
	if err := cfg.ApplyOverride(overrides...); err != nil {
		return err
	}
	return InitWithConfig(cfg)
}

// InitWithConfig starts the default pipeline from cfg
func InitWithConfig(cfg *Config, opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultPipeline != nil {
		return fmtErrorf("default pipeline already initialized")
	}
	p, err := Initialize(cfg, opts...)
	if err != nil {
		return err
	}
	defaultPipeline = p
	return nil
}

// Default returns the default pipeline, nil before Init
func Default() *Pipeline {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultPipeline
}

// Shutdown stops the default pipeline; it is a no-op when none is running
func Shutdown() error {
	defaultMu.Lock()
	p := defaultPipeline
	defaultPipeline = nil
	defaultMu.Unlock()

	if p == nil {
		return nil
	}
	return p.Shutdown()
}

// logDefault drops records silently while no default pipeline runs
func logDefault(level int64, args ...any) {
	if p := Default(); p != nil {
		_ = p.Log(level, args...)
	}
}

// Trace logs a message at trace level
func Trace(args ...any) {
	logDefault(LevelTrace, args...)
}

// Debug logs a message at debug level
func Debug(args ...any) {
	logDefault(LevelDebug, args...)
}

// Info logs a message at info level
func Info(args ...any) {
	logDefault(LevelInfo, args...)
}

// Warn logs a message at warning level
func Warn(args ...any) {
	logDefault(LevelWarn, args...)
}

// Error logs a message at error level
func Error(args ...any) {
	logDefault(LevelError, args...)
}

// Critical logs a message at critical level
func Critical(args ...any) {
	logDefault(LevelCritical, args...)
}
