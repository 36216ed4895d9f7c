// FILE: sink_test.go
package dailylog

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lixenwraith/dailylog/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSink records every message it receives
type memSink struct {
	name   string
	kind   SinkKind
	path   string
	level  int64
	mu     sync.Mutex
	lines  []string
	closed bool
}

func newMemSink(name string) *memSink {
	return &memSink{name: name, kind: SinkCustom, level: LevelTrace}
}

// newMemFileSink is a memory sink standing in for a dated file
func newMemFileSink(path string) *memSink {
	return &memSink{name: "file:" + filepath.Base(path), kind: SinkFile, path: path, level: LevelTrace}
}

func (m *memSink) Name() string             { return m.name }
func (m *memSink) Kind() SinkKind           { return m.kind }
func (m *memSink) Path() string             { return m.path }
func (m *memSink) Accepts(level int64) bool { return level >= m.level }
func (m *memSink) Render(rec Record) []byte { return []byte(rec.Message) }

func (m *memSink) Write(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSinkClosed
	}
	m.lines = append(m.lines, string(p))
	return nil
}

func (m *memSink) Flush() error { return nil }

func (m *memSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memSink) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func (m *memSink) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// count returns how many lines contain substr
func (m *memSink) count(substr string) int {
	n := 0
	for _, l := range m.Lines() {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

// gateSink blocks every write until opened
type gateSink struct {
	*memSink
	entered   chan struct{}
	enterOnce sync.Once
	open      chan struct{}
	openOnce  sync.Once
}

func newGateSink() *gateSink {
	return &gateSink{
		memSink: newMemSink("gate"),
		entered: make(chan struct{}),
		open:    make(chan struct{}),
	}
}

func (g *gateSink) Write(p []byte) error {
	g.enterOnce.Do(func() { close(g.entered) })
	<-g.open
	return g.memSink.Write(p)
}

func (g *gateSink) Open() {
	g.openOnce.Do(func() { close(g.open) })
}

// failingSink rejects every write
type failingSink struct {
	*memSink
	err error
}

func newFailingSink(name string) *failingSink {
	return &failingSink{memSink: newMemSink(name), err: errors.New("disk on fire")}
}

func (f *failingSink) Write([]byte) error { return f.err }

func TestConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, LevelInfo, nil)

	assert.Equal(t, "console", s.Name())
	assert.Equal(t, SinkConsole, s.Kind())
	assert.False(t, s.Accepts(LevelDebug))
	assert.True(t, s.Accepts(LevelInfo))
	assert.True(t, s.Accepts(LevelCritical))

	rec := NewRecord(LevelWarn, 3, "careful")
	require.NoError(t, s.Write(s.Render(rec)))
	out := buf.String()
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, formatter.LevelColor(LevelWarn))
	assert.Contains(t, out, formatter.Reset)

	s.SetLevel(LevelError)
	assert.False(t, s.Accepts(LevelWarn))
	assert.Equal(t, LevelError, s.Level())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write([]byte("late\n")), ErrSinkClosed)
	assert.ErrorIs(t, s.Flush(), ErrSinkClosed)
}

func TestConsoleWriterTarget(t *testing.T) {
	assert.Equal(t, os.Stderr, consoleWriter("stderr"))
	assert.Equal(t, os.Stdout, consoleWriter("stdout"))
	assert.Equal(t, os.Stdout, consoleWriter(""))
}

func TestFileSinkWritesStrippedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app_2025-03-14.log")

	s, err := NewFileSink(path, FileSinkOptions{Level: LevelTrace})
	require.NoError(t, err)
	assert.Equal(t, SinkFile, s.Kind())
	assert.Equal(t, path, s.Path())
	assert.True(t, s.Accepts(LevelTrace))

	msg := formatter.Colorize("colored", formatter.Bold, formatter.Red) + " plain"
	require.NoError(t, s.Write(s.Render(NewRecord(LevelError, 7, msg))))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, content, "\x1b")
	assert.Contains(t, content, "[ERROR] [7] colored plain")
	assert.True(t, strings.HasSuffix(content, "\n"))
	assert.Greater(t, s.BytesWritten(), int64(0))

	assert.ErrorIs(t, s.Write([]byte("x\n")), ErrSinkClosed)
	assert.NoError(t, s.Close())
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_2025-03-14.log")

	for _, msg := range []string{"first", "second"} {
		s, err := NewFileSink(path, FileSinkOptions{Level: LevelTrace})
		require.NoError(t, err)
		require.NoError(t, s.Write(s.Render(NewRecord(LevelInfo, 1, msg))))
		require.NoError(t, s.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestFileSinkUnwritableDirectory(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "app.log")
		_, err := NewFileSink(path, FileSinkOptions{})
		assert.Error(t, err)
	})

	t.Run("path is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		_, err := NewFileSink(filepath.Join(blocker, "app.log"), FileSinkOptions{})
		assert.Error(t, err)
	})

	t.Run("read only directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "ro")
		require.NoError(t, os.Mkdir(dir, 0555))
		t.Cleanup(func() { os.Chmod(dir, 0755) })
		_, err := NewFileSink(filepath.Join(dir, "app.log"), FileSinkOptions{})
		assert.Error(t, err)
	})
}

func TestFileSinkSizeRollover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app_2025-03-14.log")

	s, err := NewFileSink(path, FileSinkOptions{Level: LevelTrace, MaxSizeMB: 1, MaxBackups: 2})
	require.NoError(t, err)
	require.NoError(t, s.Write(s.Render(NewRecord(LevelInfo, 1, "through lumberjack"))))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "through lumberjack")
}

// flakyDevice fails its next fails writes, then accepts everything
type flakyDevice struct {
	fails int
	buf   bytes.Buffer
}

func (w *flakyDevice) Write(p []byte) (int, error) {
	if w.fails > 0 {
		w.fails--
		return 0, errors.New("no space left on device")
	}
	return w.buf.Write(p)
}

func TestFileSinkRecoversAfterWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_2025-03-14.log")
	s, err := NewFileSink(path, FileSinkOptions{Level: LevelTrace})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	dev := &flakyDevice{fails: 1}
	s.out = dev
	s.w = bufio.NewWriterSize(dev, 16)

	// Longer than the buffer, so both lines go straight to the device
	assert.Error(t, s.Write([]byte("first line that fails\n")))
	require.NoError(t, s.Write([]byte("second line after recovery\n")))
	require.NoError(t, s.Flush())
	assert.Equal(t, "second line after recovery\n", dev.buf.String())

	// A failed flush loses only what was buffered
	dev.fails = 1
	require.NoError(t, s.Write([]byte("short\n")))
	assert.Error(t, s.Flush())
	require.NoError(t, s.Write([]byte("short again\n")))
	require.NoError(t, s.Flush())
	assert.Equal(t, "second line after recovery\nshort again\n", dev.buf.String())
}
