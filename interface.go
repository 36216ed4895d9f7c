// FILE: interface.go
package dailylog

import (
	"fmt"
)

// Producer is a named ordering lane into a pipeline. Records from one
// producer reach every sink in the order they were logged.
type Producer struct {
	id   uint64
	name string
	pipe *Pipeline
}

// ID returns the producer id printed by the %t pattern token
func (p *Producer) ID() uint64 { return p.id }

// Name returns the name given to NewProducer
func (p *Producer) Name() string { return p.name }

// Log enqueues a record at level. It returns ErrPipelineClosed after
// Shutdown and ErrRecordDropped when the queue is full under drop_newest.
// Records below the pipeline level are discarded without error.
func (p *Producer) Log(level int64, args ...any) error {
	pipe := p.pipe
	if level < pipe.minLevel.Load() {
		return nil
	}
	rec := NewRecord(level, p.id, args...)
	rec.Time = pipe.clock.Now()
	return pipe.dispatcher.Enqueue(rec)
}

// Logf enqueues a printf-style record at level
func (p *Producer) Logf(level int64, format string, args ...any) error {
	if level < p.pipe.minLevel.Load() {
		return nil
	}
	return p.Log(level, fmt.Sprintf(format, args...))
}

// Trace logs a message at trace level.
func (p *Producer) Trace(args ...any) {
	_ = p.Log(LevelTrace, args...)
}

// Debug logs a message at debug level.
func (p *Producer) Debug(args ...any) {
	_ = p.Log(LevelDebug, args...)
}

// Info logs a message at info level.
func (p *Producer) Info(args ...any) {
	_ = p.Log(LevelInfo, args...)
}

// Warn logs a message at warning level.
func (p *Producer) Warn(args ...any) {
	_ = p.Log(LevelWarn, args...)
}

// Error logs a message at error level.
func (p *Producer) Error(args ...any) {
	_ = p.Log(LevelError, args...)
}

// Critical logs a message at critical level.
func (p *Producer) Critical(args ...any) {
	_ = p.Log(LevelCritical, args...)
}

// Tracef logs a formatted message at trace level.
func (p *Producer) Tracef(format string, args ...any) {
	_ = p.Logf(LevelTrace, format, args...)
}

// Debugf logs a formatted message at debug level.
func (p *Producer) Debugf(format string, args ...any) {
	_ = p.Logf(LevelDebug, format, args...)
}

// Infof logs a formatted message at info level.
func (p *Producer) Infof(format string, args ...any) {
	_ = p.Logf(LevelInfo, format, args...)
}

// Warnf logs a formatted message at warning level.
func (p *Producer) Warnf(format string, args ...any) {
	_ = p.Logf(LevelWarn, format, args...)
}

// Errorf logs a formatted message at error level.
func (p *Producer) Errorf(format string, args ...any) {
	_ = p.Logf(LevelError, format, args...)
}

// Criticalf logs a formatted message at critical level.
func (p *Producer) Criticalf(format string, args ...any) {
	_ = p.Logf(LevelCritical, format, args...)
}
