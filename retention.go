// FILE: retention.go
package dailylog

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// errDiskSpaceLow is returned when cleanup could not restore the minimum free space
var errDiskSpaceLow = errors.New("free disk space below minimum")

// retention enforces the age, total size and free space limits of the log
// directory at startup, after each rotation and on the disk check interval
type retention struct {
	store          *logStore
	clock          Clock
	days           int64
	maxTotal       int64
	minFree        int64
	errorsToStderr bool
	freeSpace      func(dir string) (int64, error) // nil means diskFreeSpace

	mu             sync.Mutex
	deleted        atomic.Uint64
	diskStatusOK   atomic.Bool
	diskFullLogged atomic.Bool
	failureLogged  atomic.Bool
}

func newRetention(cfg *Config, store *logStore, clock Clock) *retention {
	r := &retention{
		store:          store,
		clock:          clock,
		days:           cfg.RetentionDays,
		maxTotal:       cfg.MaxTotalSizeMB * sizeMultiplier,
		minFree:        cfg.MinDiskFreeMB * sizeMultiplier,
		errorsToStderr: cfg.InternalErrorsToStderr,
	}
	r.diskStatusOK.Store(true)
	return r
}

// run applies the limits and returns the number of removed files. The
// active file is never removed.
func (r *retention) run(active string) (int, error) {
	if r.days <= 0 && r.maxTotal <= 0 && r.minFree <= 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var need int64
	if r.minFree > 0 {
		free, err := r.free()
		if err != nil {
			return 0, err
		}
		if free < r.minFree {
			need = r.minFree - free
		}
	}

	now := r.clock.Now()
	var keep time.Duration
	if r.days > 0 {
		keep = now.Sub(dayOf(now).AddDate(0, 0, -int(r.days)))
	}
	n, freed, err := r.store.cleanup(active, now, keep, r.maxTotal, need)
	r.deleted.Add(uint64(n))
	if err == nil && freed < need {
		err = fmtErrorf("%w: need %d more bytes in '%s'", errDiskSpaceLow, need-freed, r.store.dir)
	}
	return n, err
}

func (r *retention) free() (int64, error) {
	if r.freeSpace != nil {
		return r.freeSpace(r.store.dir)
	}
	return diskFreeSpace(r.store.dir)
}

// check runs the limits and reports through d. A disk shortfall or a failing
// cleanup is reported once until a later check succeeds.
func (r *retention) check(d *Dispatcher, active string) {
	n, err := r.run(active)
	now := r.clock.Now()

	switch {
	case errors.Is(err, errDiskSpaceLow):
		r.diskStatusOK.Store(false)
		if !r.diskFullLogged.Swap(true) {
			internalLog(r.errorsToStderr, "%v\n", err)
			_ = d.Enqueue(internalRecord(now, LevelError, "Log directory full or disk space low, cleanup failed", "error", err))
		}
	case err != nil:
		if !r.failureLogged.Swap(true) {
			internalLog(r.errorsToStderr, "retention cleanup failed: %v\n", err)
			_ = d.Enqueue(internalRecord(now, LevelWarn, "Log retention cleanup failed", "error", err))
		}
	default:
		r.failureLogged.Store(false)
		r.diskStatusOK.Store(true)
		if r.diskFullLogged.Swap(false) {
			_ = d.Enqueue(internalRecord(now, LevelInfo, "Free disk space restored"))
		}
	}

	if n > 0 {
		_ = d.Enqueue(internalRecord(now, LevelInfo, "Removed old log files", "count", n))
	}
}

// startDiskCheck enforces the size and free space limits every intervalMs
// between rotations. Age limits only move at midnight and are left to rotation.
func (p *Pipeline) startDiskCheck(intervalMs int64) {
	if intervalMs <= 0 || (p.retention.maxTotal <= 0 && p.retention.minFree <= 0) {
		return
	}
	p.diskCheckStop = make(chan struct{})
	p.diskCheckDone = make(chan struct{})

	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	go func() {
		defer close(p.diskCheckDone)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.retention.check(p.dispatcher, p.ActiveFile())
			case <-p.diskCheckStop:
				return
			}
		}
	}()
}

// stopDiskCheck stops and joins the disk check goroutine
func (p *Pipeline) stopDiskCheck() {
	if p.diskCheckStop == nil {
		return
	}
	close(p.diskCheckStop)
	<-p.diskCheckDone
}
