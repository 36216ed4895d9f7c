// FILE: timer.go
package dailylog

import "time"

// Clock abstracts wall time for the rotation scheduler
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the scheduler needs
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// SystemClock is the process wall clock
type SystemClock struct{}

// Now returns time.Now
func (SystemClock) Now() time.Time { return time.Now() }

// NewTimer wraps time.NewTimer
func (SystemClock) NewTimer(d time.Duration) Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (s *systemTimer) C() <-chan time.Time { return s.t.C }
func (s *systemTimer) Stop() bool          { return s.t.Stop() }

// nextMidnight returns the first local midnight strictly after t
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// dayOf truncates t to its local calendar day
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// newFlushTicker creates the periodic sink flush ticker, nil when disabled
func newFlushTicker(intervalMs int64) *time.Ticker {
	if intervalMs <= 0 {
		return nil
	}
	interval := time.Duration(intervalMs) * time.Millisecond
	if interval < minWaitTime {
		interval = minWaitTime
	}
	return time.NewTicker(interval)
}
