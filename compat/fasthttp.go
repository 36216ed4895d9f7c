// FILE: compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/dailylog"
	"github.com/valyala/fasthttp"
)

// FastHTTPAdapter routes fasthttp server messages into a pipeline producer
type FastHTTPAdapter struct {
	producer      *dailylog.Producer
	defaultLevel  int64
	levelDetector func(string) int64
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter with
// its own producer lane named "fasthttp"
func NewFastHTTPAdapter(p *dailylog.Pipeline, opts ...FastHTTPOption) *FastHTTPAdapter {
	a := &FastHTTPAdapter{
		producer:      p.NewProducer("fasthttp"),
		defaultLevel:  dailylog.LevelInfo,
		levelDetector: DetectLogLevel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FastHTTPOption configures a FastHTTPAdapter
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when the detector finds nothing
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector replaces DetectLogLevel; a detector returning 0 defers to the default level
func WithLevelDetector(detector func(string) int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp.Logger
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected != 0 {
			level = detected
		}
	}
	_ = a.producer.Log(level, "msg", msg, "source", "fasthttp")
}

// levelKeywords are checked in order; the first hit decides the level
var levelKeywords = []struct {
	level int64
	words []string
}{
	{dailylog.LevelError, []string{"error", "failed", "fatal", "panic"}},
	{dailylog.LevelWarn, []string{"warn", "deprecated"}},
	{dailylog.LevelDebug, []string{"debug", "trace"}},
}

// DetectLogLevel guesses a level from fasthttp message text. It returns 0
// when nothing matches so the default level applies.
func DetectLogLevel(msg string) int64 {
	lower := strings.ToLower(msg)
	for _, kw := range levelKeywords {
		for _, w := range kw.words {
			if strings.Contains(lower, w) {
				return kw.level
			}
		}
	}
	return 0
}

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)
