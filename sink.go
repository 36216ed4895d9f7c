// FILE: sink.go
package dailylog

import (
	"errors"
	"sync/atomic"

	"github.com/lixenwraith/dailylog/formatter"
)

// ErrSinkClosed is returned by Write and Flush after Close
var ErrSinkClosed = errors.New("dailylog: sink closed")

// Sink is a log destination with its own threshold and formatter
type Sink interface {
	Name() string
	Kind() SinkKind
	Accepts(level int64) bool
	Render(rec Record) []byte
	Write(p []byte) error
	Flush() error
	Close() error
}

// LevelSetter is implemented by sinks whose threshold can change at runtime
type LevelSetter interface {
	SetLevel(level int64)
	Level() int64
}

// sinkBase carries the threshold and formatter shared by the built-in sinks
type sinkBase struct {
	name  string
	level atomic.Int64
	fmt   *formatter.Formatter
}

func (b *sinkBase) init(name string, level int64, f *formatter.Formatter) {
	b.name = name
	b.level.Store(level)
	b.fmt = f
}

// Name returns the sink name
func (b *sinkBase) Name() string { return b.name }

// Accepts reports whether level meets the sink threshold
func (b *sinkBase) Accepts(level int64) bool { return level >= b.level.Load() }

// SetLevel changes the sink threshold
func (b *sinkBase) SetLevel(level int64) { b.level.Store(level) }

// Level returns the sink threshold
func (b *sinkBase) Level() int64 { return b.level.Load() }

// Formatter returns the bound formatter
func (b *sinkBase) Formatter() *formatter.Formatter { return b.fmt }

// Render formats rec through the bound formatter
func (b *sinkBase) Render(rec Record) []byte {
	return b.fmt.Render(rec.Time, rec.Level, rec.Producer, rec.Message)
}
