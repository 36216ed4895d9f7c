// FILE: state.go
package dailylog

import (
	"sync/atomic"
	"time"
)

// State encapsulates the runtime state of the pipeline
type State struct {
	IsInitialized  atomic.Bool
	ShutdownCalled atomic.Bool

	StartTime atomic.Value // stores time.Time for uptime calculation

	// Heartbeat statistics
	HeartbeatSequence atomic.Uint64 // Counter for heartbeat sequence numbers
}

// uptime returns the time since Initialize
func (s *State) uptime(now time.Time) time.Duration {
	if start, ok := s.StartTime.Load().(time.Time); ok && !start.IsZero() {
		return now.Sub(start)
	}
	return 0
}

// Shutdown stops the pipeline: intake first, then the rotation scheduler,
// then the queue is drained and every sink is flushed and closed.
// Calls after the first wait for it to finish and return nil.
func (p *Pipeline) Shutdown() error {
	if !p.state.ShutdownCalled.CompareAndSwap(false, true) {
		<-p.shutdownDone
		return nil
	}
	defer close(p.shutdownDone)

	if !p.state.IsInitialized.Load() {
		return nil
	}

	// Last record the sinks receive
	_ = p.dispatcher.Enqueue(internalRecord(p.clock.Now(), LevelInfo, "===== Application exiting normally ====="))

	p.stopHeartbeat()
	p.stopDiskCheck()

	p.dispatcher.StopIntake()
	p.scheduler.Stop()

	finalErr := p.dispatcher.Shutdown()
	p.state.IsInitialized.Store(false)
	return finalErr
}

// Flush blocks until records logged so far reach the sinks, or timeout
func (p *Pipeline) Flush(timeout time.Duration) error {
	if !p.state.IsInitialized.Load() || p.state.ShutdownCalled.Load() {
		return fmtErrorf("pipeline not initialized or already shut down")
	}
	return p.dispatcher.Flush(timeout)
}
