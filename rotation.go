// FILE: rotation.go
package dailylog

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

// RotationState is the scheduler state machine position
type RotationState int32

const (
	StateIdle RotationState = iota
	StateWaiting
	StateRotating
	StateTerminated
)

// String returns the state name
func (s RotationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateRotating:
		return "rotating"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// SchedulerOptions configures a Scheduler
type SchedulerOptions struct {
	Clock   Clock
	PathFor func(t time.Time) string // dated file path for a wall time
	NewSink FileSinkFactory
	// OnRotate runs after a successful swap. d is only valid for the call.
	OnRotate func(d *Dispatcher, path string)
}

// Scheduler swaps the dispatcher's file sink at every local midnight.
// It holds the dispatcher weakly and exits once it can no longer resolve it.
type Scheduler struct {
	target weak.Pointer[Dispatcher]
	opts   SchedulerOptions

	state    atomic.Int32
	alive    atomic.Bool
	deadline atomic.Int64 // unix nanos of the pending deadline

	rotations atomic.Uint64
	failures  atomic.Uint64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  atomic.Bool
}

// NewScheduler creates a stopped scheduler for d
func NewScheduler(d *Dispatcher, opts SchedulerOptions) (*Scheduler, error) {
	if d == nil {
		return nil, fmtErrorf("scheduler needs a dispatcher")
	}
	if opts.PathFor == nil || opts.NewSink == nil {
		return nil, fmtErrorf("scheduler needs a path function and a sink factory")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	s := &Scheduler{
		target: weak.Make(d),
		opts:   opts,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.state.Store(int32(StateIdle))
	return s, nil
}

// Start launches the scheduler goroutine. Only the first call before Stop has an effect.
func (s *Scheduler) Start() {
	select {
	case <-s.stop:
		return
	default:
	}
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.alive.Store(true)
	go s.run()
}

// Stop cancels a pending wait and joins the scheduler goroutine
func (s *Scheduler) Stop() {
	s.alive.Store(false)
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started.Load() {
		<-s.done
	} else {
		s.state.Store(int32(StateTerminated))
	}
}

// State returns the current state
func (s *Scheduler) State() RotationState {
	return RotationState(s.state.Load())
}

// NextDeadline returns the pending rotation deadline, zero when none
func (s *Scheduler) NextDeadline() time.Time {
	ns := s.deadline.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).In(s.opts.Clock.Now().Location())
}

// Rotations returns the number of successful swaps
func (s *Scheduler) Rotations() uint64 { return s.rotations.Load() }

// Failures returns the number of rotation attempts that could not build a sink
func (s *Scheduler) Failures() uint64 { return s.failures.Load() }

func (s *Scheduler) setState(st RotationState) {
	s.state.Store(int32(st))
}

// run is the scheduler loop
func (s *Scheduler) run() {
	defer close(s.done)
	defer s.setState(StateTerminated)

	var last time.Time
	for {
		if !s.alive.Load() || s.targetGone() {
			return
		}

		s.setState(StateIdle)
		from := s.opts.Clock.Now()
		if from.Before(last) {
			from = last
		}
		deadline := nextMidnight(from)
		s.deadline.Store(deadline.UnixNano())

		if !s.wait(deadline) || !s.alive.Load() {
			return
		}

		s.setState(StateRotating)
		if !s.rotate(deadline) {
			return
		}
		last = deadline
	}
}

// targetGone resolves the weak reference without keeping the dispatcher
func (s *Scheduler) targetGone() bool {
	d := s.target.Value()
	return d == nil || d.Closed()
}

// wait blocks until deadline or Stop; false means cancelled
func (s *Scheduler) wait(deadline time.Time) bool {
	timer := s.opts.Clock.NewTimer(deadline.Sub(s.opts.Clock.Now()))
	defer timer.Stop()
	s.setState(StateWaiting)

	select {
	case <-timer.C():
		return true
	case <-s.stop:
		return false
	}
}

// rotate performs one cycle; false means the dispatcher is gone
func (s *Scheduler) rotate(deadline time.Time) bool {
	d := s.target.Value()
	if d == nil || d.Closed() {
		return false
	}

	now := s.opts.Clock.Now()
	if now.Before(deadline) {
		now = deadline
	}
	path := s.opts.PathFor(now)

	if current, ok := d.FileSink().(interface{ Path() string }); ok && current.Path() == path {
		return true
	}

	next, err := s.opts.NewSink(path)
	if err != nil {
		s.failures.Add(1)
		rec := internalRecord(now, LevelError, "Log rotation failed, keeping current file", "path", path, "error", err)
		return !errors.Is(d.Enqueue(rec), ErrPipelineClosed)
	}

	old, err := d.ReplaceFileSink(next)
	if errors.Is(err, ErrPipelineClosed) {
		next.Close()
		return false
	}
	if err != nil {
		// The swap happened, only closing the old file failed
		_ = d.Enqueue(internalRecord(now, LevelWarn, "Closing rotated log file failed", "error", err))
	}

	s.rotations.Add(1)
	oldPath := ""
	if p, ok := old.(interface{ Path() string }); ok {
		oldPath = p.Path()
	}
	_ = d.Enqueue(internalRecord(now, LevelInfo, "Log file rotated", "from", oldPath, "to", path))

	if s.opts.OnRotate != nil {
		s.opts.OnRotate(d, path)
	}
	return true
}
