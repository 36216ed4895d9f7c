package dailylog

import (
	"io"
	"os"
	"sync"

	"github.com/lixenwraith/dailylog/formatter"
)

// ConsoleSink writes colorized lines to a terminal stream
type ConsoleSink struct {
	sinkBase
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewConsoleSink creates a console sink. A nil writer means os.Stdout and a nil
// formatter means the colorizing console pattern.
func NewConsoleSink(w io.Writer, level int64, f *formatter.Formatter) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if f == nil {
		f = formatter.New(formatter.ModeColorize)
	}
	s := &ConsoleSink{w: w}
	s.init("console", level, f)
	return s
}

// Kind implements Sink
func (s *ConsoleSink) Kind() SinkKind { return SinkConsole }

// Write implements Sink
func (s *ConsoleSink) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.w.Write(p); err != nil {
		return fmtErrorf("failed to write to console: %w", err)
	}
	return nil
}

// Flush implements Sink; buffered writers are flushed, terminals are left alone
func (s *ConsoleSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	return s.flushLocked()
}

func (s *ConsoleSink) flushLocked() error {
	if f, ok := s.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmtErrorf("failed to flush console: %w", err)
		}
	}
	return nil
}

// Close flushes and stops accepting writes; the underlying stream stays open
func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.flushLocked()
}

// consoleWriter resolves the configured console target
func consoleWriter(target string) io.Writer {
	if target == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}
