package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/dailylog"
	"github.com/panjf2000/gnet/v2/pkg/logging"
)

// GnetAdapter routes gnet's logging.Logger calls into a pipeline producer
type GnetAdapter struct {
	producer     *dailylog.Producer
	pipe         *dailylog.Pipeline
	fatalHandler func(msg string)
}

// NewGnetAdapter creates a new gnet-compatible logger adapter with its own
// producer lane named "gnet"
func NewGnetAdapter(p *dailylog.Pipeline, opts ...GnetOption) *GnetAdapter {
	a := &GnetAdapter{
		producer:     p.NewProducer("gnet"),
		pipe:         p,
		fatalHandler: func(string) { os.Exit(1) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GnetOption configures a GnetAdapter
type GnetOption func(*GnetAdapter)

// WithFatalHandler replaces the default os.Exit(1) after Fatalf
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

func (a *GnetAdapter) logf(level int64, format string, args ...any) {
	_ = a.producer.Log(level, "msg", fmt.Sprintf(format, args...), "source", "gnet")
}

func (a *GnetAdapter) Debugf(format string, args ...any) { a.logf(dailylog.LevelDebug, format, args...) }
func (a *GnetAdapter) Infof(format string, args ...any)  { a.logf(dailylog.LevelInfo, format, args...) }
func (a *GnetAdapter) Warnf(format string, args ...any)  { a.logf(dailylog.LevelWarn, format, args...) }
func (a *GnetAdapter) Errorf(format string, args ...any) { a.logf(dailylog.LevelError, format, args...) }

// Fatalf logs at critical level, waits for delivery and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.producer.Critical("msg", msg, "source", "gnet", "fatal", true)

	_ = a.pipe.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

var _ logging.Logger = (*GnetAdapter)(nil)
