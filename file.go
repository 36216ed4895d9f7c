package dailylog

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/dailylog/formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSinkOptions configures a FileSink
type FileSinkOptions struct {
	Level     int64
	Formatter *formatter.Formatter // nil means the stripping file pattern
	// Size rollover within the day, 0 disables it
	MaxSizeMB  int64
	MaxBackups int64
	Compress   bool
}

// FileSinkFactory builds the file sink for a dated path
type FileSinkFactory func(path string) (Sink, error)

// FileSink appends stripped lines to one dated file
type FileSink struct {
	sinkBase
	mu      sync.Mutex
	path    string
	file    *os.File           // nil when size rollover is enabled
	roller  *lumberjack.Logger // nil when writing the file directly
	out     io.Writer          // file or roller, target of w
	w       *bufio.Writer
	closed  bool
	written atomic.Int64
}

// NewFileSink opens path for appending. It fails when the directory is
// missing or not writable.
func NewFileSink(path string, opts FileSinkOptions) (*FileSink, error) {
	dir := filepath.Dir(path)
	if err := checkWritableDir(dir); err != nil {
		return nil, err
	}

	f := opts.Formatter
	if f == nil {
		f = formatter.New(formatter.ModeStrip)
	}

	s := &FileSink{path: path}
	s.init("file:"+filepath.Base(path), opts.Level, f)

	var out io.Writer
	if opts.MaxSizeMB > 0 {
		s.roller = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    int(opts.MaxSizeMB),
			MaxBackups: int(opts.MaxBackups),
			Compress:   opts.Compress,
			LocalTime:  true,
		}
		out = s.roller
	} else {
		file, err := createLogFile(path)
		if err != nil {
			return nil, err
		}
		s.file = file
		out = file
	}
	s.out = out
	s.w = bufio.NewWriterSize(out, fileBufferSize)
	return s, nil
}

// Kind implements Sink
func (s *FileSink) Kind() SinkKind { return SinkFile }

// Path returns the file this sink appends to
func (s *FileSink) Path() string { return s.path }

// BytesWritten returns the number of bytes accepted by Write
func (s *FileSink) BytesWritten() int64 { return s.written.Load() }

// Write implements Sink
func (s *FileSink) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	n, err := s.w.Write(p)
	s.written.Add(int64(n))
	if err != nil {
		// bufio errors are sticky, the lost buffer is dropped so the next
		// write reaches the file again
		s.w.Reset(s.out)
		return fmtErrorf("failed to write log file '%s': %w", s.path, err)
	}
	return nil
}

// Flush pushes buffered lines to the file and syncs it
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	return s.flushLocked()
}

func (s *FileSink) flushLocked() error {
	if err := s.w.Flush(); err != nil {
		s.w.Reset(s.out)
		return fmtErrorf("failed to flush log file '%s': %w", s.path, err)
	}
	if s.file != nil {
		if err := s.file.Sync(); err != nil {
			return fmtErrorf("failed to sync log file '%s': %w", s.path, err)
		}
	}
	return nil
}

// Close flushes and closes the file; later calls are no-ops
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.flushLocked()
	if s.file != nil {
		if cerr := s.file.Close(); cerr != nil {
			err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", s.path, cerr))
		}
	}
	if s.roller != nil {
		if cerr := s.roller.Close(); cerr != nil {
			err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", s.path, cerr))
		}
	}
	return err
}

// fileSinkFactory returns the factory used by the pipeline for cfg
func fileSinkFactory(cfg *Config, level int64) FileSinkFactory {
	return func(path string) (Sink, error) {
		f := formatter.New(formatter.ModeStrip).Pattern(cfg.FilePattern)
		s, err := NewFileSink(path, FileSinkOptions{
			Level:      level,
			Formatter:  f,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
