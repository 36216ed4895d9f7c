// --- File: processor.go ---
package dailylog

import (
	"errors"
	"time"
)

// drain is the worker loop for one shard
func (d *Dispatcher) drain(ch <-chan item) {
	defer d.workersWG.Done()

	for it := range ch {
		if it.fence != nil {
			it.fence.arrived.Done()
			<-it.fence.release
			continue
		}
		if it.ack != nil {
			it.ack <- struct{}{}
			continue
		}
		d.deliver(it.rec)
	}
}

// deliver writes rec to every accepting sink of the current snapshot.
// The sink lock is not held while formatting or writing.
func (d *Dispatcher) deliver(rec Record) {
	sinks := d.snapshot()
	for i, s := range sinks {
		if !s.Accepts(rec.Level) {
			continue
		}
		if err := s.Write(s.Render(rec)); err != nil {
			d.handleSinkError(sinks, i, err)
			continue
		}
		if d.failingCount.Load() > 0 {
			d.markRecovered(s)
		}
	}
	d.processed.Add(1)
}

// handleSinkError counts the failure and, once per failure streak, reports it
// through the other sinks of the same snapshot
func (d *Dispatcher) handleSinkError(sinks []Sink, failed int, err error) {
	d.sinkErrors.Add(1)
	s := sinks[failed]
	internalLog(d.opts.ErrorsToStderr, "sink '%s' write failed: %v\n", s.Name(), err)

	if !d.markFailing(s) {
		return
	}

	report := internalRecord(d.opts.Now(), LevelError, "Sink write failed", "sink", s.Name(), "error", err)
	for j, other := range sinks {
		if j == failed || !other.Accepts(report.Level) {
			continue
		}
		if werr := other.Write(other.Render(report)); werr != nil {
			internalLog(d.opts.ErrorsToStderr, "failed to report sink failure through '%s': %v\n", other.Name(), werr)
		}
	}
}

// markFailing returns true when s was healthy before this failure
func (d *Dispatcher) markFailing(s Sink) bool {
	d.failingMu.Lock()
	defer d.failingMu.Unlock()
	if d.failing[s.Name()] {
		return false
	}
	d.failing[s.Name()] = true
	d.failingCount.Add(1)
	return true
}

// markRecovered clears the failure streak of s
func (d *Dispatcher) markRecovered(s Sink) {
	d.failingMu.Lock()
	defer d.failingMu.Unlock()
	if d.failing[s.Name()] {
		delete(d.failing, s.Name())
		d.failingCount.Add(-1)
	}
}

// flushLoop flushes all sinks on every tick until Shutdown
func (d *Dispatcher) flushLoop(ticker *time.Ticker) {
	defer close(d.flushDone)

	if ticker == nil {
		<-d.flushStop
		return
	}
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.flushAll()
		case <-d.flushStop:
			return
		}
	}
}

// flushAll flushes the current snapshot; sinks closed by a rotation are skipped
func (d *Dispatcher) flushAll() {
	for _, s := range d.snapshot() {
		if err := s.Flush(); err != nil && !errors.Is(err, ErrSinkClosed) {
			internalLog(d.opts.ErrorsToStderr, "flush of sink '%s' failed: %v\n", s.Name(), err)
		}
	}
}
