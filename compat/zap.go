package compat

import (
	"sort"
	"time"

	"github.com/lixenwraith/dailylog"
	"go.uber.org/zap/zapcore"
)

// ZapCore is a zapcore.Core that enqueues zap entries into a pipeline.
// Fields are rendered as key value pairs after the message.
type ZapCore struct {
	producer *dailylog.Producer
	pipe     *dailylog.Pipeline
	fields   []zapcore.Field
}

// NewZapCore creates a core with its own producer lane named "zap"
func NewZapCore(p *dailylog.Pipeline) *ZapCore {
	return &ZapCore{producer: p.NewProducer("zap"), pipe: p}
}

// zapLevel maps zap levels onto pipeline levels
func zapLevel(l zapcore.Level) int64 {
	switch {
	case l <= zapcore.DebugLevel:
		return dailylog.LevelDebug
	case l == zapcore.InfoLevel:
		return dailylog.LevelInfo
	case l == zapcore.WarnLevel:
		return dailylog.LevelWarn
	case l == zapcore.ErrorLevel:
		return dailylog.LevelError
	default:
		return dailylog.LevelCritical
	}
}

// Enabled reports whether the pipeline level lets lvl through
func (c *ZapCore) Enabled(lvl zapcore.Level) bool {
	return zapLevel(lvl) >= c.pipe.GetLevel()
}

// With returns a core that adds fields to every entry; both cores share
// the producer lane
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	next := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	next = append(next, c.fields...)
	next = append(next, fields...)
	return &ZapCore{producer: c.producer, pipe: c.pipe, fields: next}
}

// Check implements zapcore.Core
func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write implements zapcore.Core
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, 3+2*len(keys))
	if ent.LoggerName != "" {
		args = append(args, ent.LoggerName+":")
	}
	args = append(args, ent.Message)
	for _, k := range keys {
		args = append(args, k, enc.Fields[k])
	}
	return c.producer.Log(zapLevel(ent.Level), args...)
}

// Sync waits briefly for queued entries to reach the sinks
func (c *ZapCore) Sync() error {
	return c.pipe.Flush(time.Second)
}

var _ zapcore.Core = (*ZapCore)(nil)
