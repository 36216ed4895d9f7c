// FILE: integration_test.go
package dailylog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullLifecycle runs a pipeline across a local midnight with real files
func TestFullLifecycle(t *testing.T) {
	start := time.Date(2025, 3, 14, 23, 59, 55, 0, time.Local)
	clock := newFakeClock(start)
	p, tmpDir, console := createTestPipeline(t, WithClock(clock))

	oldPath := filepath.Join(tmpDir, "app_2025-03-14.log")
	newPath := filepath.Join(tmpDir, "app_2025-03-15.log")
	require.Equal(t, oldPath, p.ActiveFile())

	midnight := nextMidnight(start)
	require.Eventually(t, func() bool {
		return p.Scheduler().State() == StateWaiting && clock.pending() == 1
	}, 2*time.Second, time.Millisecond)

	// Hold the worker so the next records stay queued across the boundary
	gate := newGateSink()
	require.NoError(t, p.Dispatcher().AddSink(gate))
	worker := p.NewProducer("worker")
	for i := 0; i < 10; i++ {
		worker.Infof("before midnight %d", i)
	}
	<-gate.entered

	clock.Set(midnight.Add(time.Second))
	require.Eventually(t, func() bool { return p.Scheduler().State() == StateRotating }, 2*time.Second, time.Millisecond)
	gate.Open()

	require.Eventually(t, func() bool { return p.Stats().Rotations == 1 }, 2*time.Second, time.Millisecond)
	worker.Info("after midnight")
	assert.Equal(t, newPath, p.ActiveFile())

	require.NoError(t, p.Shutdown())

	oldContent := readFile(t, oldPath)
	newContent := readFile(t, newPath)

	assert.Equal(t, 10, countLines(oldContent, "before midnight"))
	assert.Equal(t, 0, countLines(oldContent, "after midnight"))
	assert.Equal(t, 0, countLines(newContent, "before midnight"))
	assert.Equal(t, 1, countLines(newContent, "after midnight"))
	assert.Equal(t, 1, countLines(newContent, "Log file rotated from "+oldPath+" to "+newPath))
	assert.Equal(t, 1, countLines(newContent, "Application exiting normally"))

	assert.NotContains(t, oldContent, "\x1b")
	assert.NotContains(t, newContent, "\x1b")
	assert.Equal(t, 11, countLines(console.String(), "midnight"))
}

// A rotation that cannot open the new file keeps logging to the old one
func TestRotationFailureKeepsOldFile(t *testing.T) {
	start := time.Date(2025, 3, 14, 23, 59, 55, 0, time.Local)
	clock := newFakeClock(start)

	var mu sync.Mutex
	failures := 1
	var cfg *Config
	var level int64 = LevelTrace
	factory := func(path string) (Sink, error) {
		mu.Lock()
		defer mu.Unlock()
		if failures > 0 && filepath.Base(path) != "app_2025-03-14.log" {
			failures--
			return nil, fmt.Errorf("open %s: permission denied", path)
		}
		return fileSinkFactory(cfg, level)(path)
	}

	cfg = DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.InternalErrorsToStderr = false
	p, err := Initialize(cfg, WithClock(clock), WithConsoleWriter(&syncBuffer{}), WithFileSinkFactory(factory))
	require.NoError(t, err)
	defer p.Shutdown()

	oldPath := p.ActiveFile()
	first := nextMidnight(start)
	require.Eventually(t, func() bool { return p.Scheduler().State() == StateWaiting && clock.pending() == 1 }, 2*time.Second, time.Millisecond)

	clock.Set(first.Add(time.Second))
	require.Eventually(t, func() bool {
		return p.Stats().RotationFailures == 1 && p.Scheduler().State() == StateWaiting && clock.pending() == 1
	}, 2*time.Second, time.Millisecond)

	p.Info("still old file")
	assert.Equal(t, oldPath, p.ActiveFile())
	assert.True(t, nextMidnight(first).Equal(p.Scheduler().NextDeadline()))

	clock.Set(nextMidnight(first).Add(time.Second))
	require.Eventually(t, func() bool { return p.Stats().Rotations == 1 }, 2*time.Second, time.Millisecond)
	p.Info("newest file")
	require.NoError(t, p.Shutdown())

	oldContent := readFile(t, oldPath)
	assert.Contains(t, oldContent, "Log rotation failed, keeping current file")
	assert.Contains(t, oldContent, "permission denied")
	assert.Contains(t, oldContent, "still old file")

	newest := filepath.Join(cfg.Directory, "app_2025-03-16.log")
	assert.Equal(t, newest, p.ActiveFile())
	assert.Contains(t, readFile(t, newest), "newest file")

	_, err = os.Stat(filepath.Join(cfg.Directory, "app_2025-03-15.log"))
	assert.True(t, os.IsNotExist(err))
}

// Drop-newest under a stalled worker counts exactly the refused records
func TestPipelineDropNewest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.EnableConsole = false
	cfg.QueueSize = 8
	cfg.OverflowPolicy = "drop_newest"

	p, err := Initialize(cfg)
	require.NoError(t, err)
	defer p.Shutdown()

	// Let the banner drain before stalling the worker
	require.Eventually(t, func() bool {
		st := p.Stats()
		return st.Processed == st.Enqueued
	}, 2*time.Second, time.Millisecond)

	gate := newGateSink()
	require.NoError(t, p.Dispatcher().AddSink(gate))
	require.NoError(t, p.Log(LevelInfo, "held"))
	<-gate.entered

	var refused int
	for i := 0; i < 20; i++ {
		if err := p.Log(LevelInfo, "burst", i); err != nil {
			require.ErrorIs(t, err, ErrRecordDropped)
			refused++
		}
	}
	assert.Equal(t, 12, refused)
	assert.Equal(t, uint64(refused), p.Stats().Dropped)

	gate.Open()
	require.Eventually(t, func() bool {
		st := p.Stats()
		return st.Processed == st.Enqueued
	}, 2*time.Second, time.Millisecond)
	require.NoError(t, p.Shutdown())
	assert.Equal(t, 8, countLines(readFile(t, p.ActiveFile()), "burst"))
	assert.Equal(t, uint64(refused), p.Stats().Dropped)
}

// Retention runs after a rotation and never removes the active file
func TestRetentionAfterRotation(t *testing.T) {
	start := time.Date(2025, 3, 14, 23, 59, 55, 0, time.Local)
	clock := newFakeClock(start)
	dir := t.TempDir()

	stale := filepath.Join(dir, "app_2025-03-01.log")
	require.NoError(t, os.WriteFile(stale, []byte("old\n"), 0644))
	old := start.AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(stale, old, old))

	cfg := DefaultConfig()
	cfg.Directory = dir
	cfg.RetentionDays = 30
	p, err := Initialize(cfg, WithClock(clock), WithConsoleWriter(&syncBuffer{}))
	require.NoError(t, err)
	defer p.Shutdown()

	_, err = os.Stat(stale)
	require.NoError(t, err, "file within retention was removed")

	require.Eventually(t, func() bool { return p.Scheduler().State() == StateWaiting && clock.pending() == 1 }, 2*time.Second, time.Millisecond)
	// The clock jumps far enough that the stale file expires
	clock.Set(start.AddDate(0, 0, 25))
	require.Eventually(t, func() bool { return p.Stats().Deletions == 1 }, 2*time.Second, time.Millisecond)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(p.ActiveFile())
	assert.NoError(t, err)
}
