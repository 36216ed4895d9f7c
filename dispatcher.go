// FILE: dispatcher.go
package dailylog

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrPipelineClosed is returned by Enqueue once intake has stopped
	ErrPipelineClosed = errors.New("dailylog: pipeline closed")
	// ErrRecordDropped is returned by Enqueue under PolicyDropNewest when the queue is full
	ErrRecordDropped = errors.New("dailylog: record dropped, queue full")
)

// DispatcherOptions configures a Dispatcher
type DispatcherOptions struct {
	QueueSize      int
	Workers        int
	Policy         OverflowPolicy
	FlushInterval  time.Duration // 0 disables periodic flushing
	ErrorsToStderr bool
	Now            func() time.Time // stamps internal records, defaults to time.Now
}

// DispatcherStats is a point-in-time view of the dispatcher counters
type DispatcherStats struct {
	Enqueued      uint64
	Processed     uint64
	Dropped       uint64
	SinkErrors    uint64
	QueueDepth    int
	QueueCapacity int
	Workers       int
}

// Dispatcher is the single ingestion point: a bounded queue drained by
// worker goroutines that fan records out to the current sink list.
type Dispatcher struct {
	opts DispatcherOptions

	sinksMu sync.RWMutex
	sinks   []Sink // copy-on-write, never mutated in place

	intakeMu sync.RWMutex
	closed   bool
	closing  atomic.Bool
	shards   []chan item

	swapMu sync.Mutex

	workersWG sync.WaitGroup
	flushStop chan struct{}
	flushDone chan struct{}

	shutdownCalled atomic.Bool
	shutdownDone   chan struct{}

	failingMu    sync.Mutex
	failing      map[string]bool
	failingCount atomic.Int32

	enqueued   atomic.Uint64
	processed  atomic.Uint64
	dropped    atomic.Uint64
	sinkErrors atomic.Uint64
}

// NewDispatcher validates opts, installs sinks and starts the workers
func NewDispatcher(opts DispatcherOptions, sinks ...Sink) (*Dispatcher, error) {
	if opts.QueueSize <= 0 {
		return nil, fmtErrorf("queue size must be positive: %d", opts.QueueSize)
	}
	if opts.Workers <= 0 {
		return nil, fmtErrorf("worker count must be positive: %d", opts.Workers)
	}
	if opts.Policy != PolicyBlock && opts.Policy != PolicyDropNewest {
		return nil, fmtErrorf("unknown overflow policy: %v", opts.Policy)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	d := &Dispatcher{
		opts:         opts,
		shards:       make([]chan item, opts.Workers),
		flushStop:    make(chan struct{}),
		flushDone:    make(chan struct{}),
		shutdownDone: make(chan struct{}),
		failing:      make(map[string]bool),
	}

	for _, s := range sinks {
		if err := d.AddSink(s); err != nil {
			return nil, err
		}
	}

	// Each producer maps to one shard, each shard has exactly one worker
	perShard := (opts.QueueSize + opts.Workers - 1) / opts.Workers
	for i := range d.shards {
		d.shards[i] = make(chan item, perShard)
	}
	for i := range d.shards {
		d.workersWG.Add(1)
		go d.drain(d.shards[i])
	}
	go d.flushLoop(newFlushTicker(opts.FlushInterval.Milliseconds()))

	return d, nil
}

// AddSink appends a sink. At most one console and one file sink may be installed.
func (d *Dispatcher) AddSink(s Sink) error {
	if s == nil {
		return fmtErrorf("sink cannot be nil")
	}
	if d.closing.Load() {
		return ErrPipelineClosed
	}

	d.sinksMu.Lock()
	defer d.sinksMu.Unlock()

	if s.Kind() != SinkCustom {
		for _, existing := range d.sinks {
			if existing.Kind() == s.Kind() {
				return fmtErrorf("a %s sink is already installed", s.Kind())
			}
		}
	}
	next := make([]Sink, 0, len(d.sinks)+1)
	next = append(next, d.sinks...)
	d.sinks = append(next, s)
	return nil
}

// Enqueue hands rec to the drain workers according to the overflow policy
func (d *Dispatcher) Enqueue(rec Record) error {
	d.intakeMu.RLock()
	defer d.intakeMu.RUnlock()

	if d.closed {
		return ErrPipelineClosed
	}

	ch := d.shardFor(rec.Producer)
	it := item{rec: rec}

	// Counted before the send so processed never runs ahead of enqueued
	d.enqueued.Add(1)
	if d.opts.Policy == PolicyDropNewest {
		select {
		case ch <- it:
		default:
			d.enqueued.Add(^uint64(0))
			d.dropped.Add(1)
			return ErrRecordDropped
		}
		return nil
	}
	ch <- it
	return nil
}

// shardFor keeps all records of one producer on one worker
func (d *Dispatcher) shardFor(producer uint64) chan item {
	return d.shards[producer%uint64(len(d.shards))]
}

// snapshot returns the current sink list; callers must not modify it
func (d *Dispatcher) snapshot() []Sink {
	d.sinksMu.RLock()
	defer d.sinksMu.RUnlock()
	return d.sinks
}

// Sinks returns a copy of the current sink list
func (d *Dispatcher) Sinks() []Sink {
	current := d.snapshot()
	out := make([]Sink, len(current))
	copy(out, current)
	return out
}

// FileSink returns the active file sink, or nil
func (d *Dispatcher) FileSink() Sink {
	for _, s := range d.snapshot() {
		if s.Kind() == SinkFile {
			return s
		}
	}
	return nil
}

// SetSinkLevel changes the threshold of the first sink of the given kind
func (d *Dispatcher) SetSinkLevel(kind SinkKind, level int64) bool {
	for _, s := range d.snapshot() {
		if s.Kind() != kind {
			continue
		}
		if ls, ok := s.(LevelSetter); ok {
			ls.SetLevel(level)
			return true
		}
	}
	return false
}

// fence parks every worker at the same point in its shard
type fence struct {
	arrived sync.WaitGroup
	release chan struct{}
}

// quiesce waits until every worker has delivered everything enqueued before
// the call, and keeps them parked until release is called
func (d *Dispatcher) quiesce() (release func(), err error) {
	d.intakeMu.RLock()
	if d.closed {
		d.intakeMu.RUnlock()
		return nil, ErrPipelineClosed
	}
	f := &fence{release: make(chan struct{})}
	f.arrived.Add(len(d.shards))
	for _, ch := range d.shards {
		// Fences ignore the overflow policy
		ch <- item{fence: f}
	}
	d.intakeMu.RUnlock()

	f.arrived.Wait()
	return func() { close(f.release) }, nil
}

// ReplaceFileSink swaps the active file sink for next. Records enqueued
// before the call go to the old sink, later ones to next. The old sink is
// flushed and closed after it leaves the list and is returned.
func (d *Dispatcher) ReplaceFileSink(next Sink) (Sink, error) {
	if next == nil || next.Kind() != SinkFile {
		return nil, fmtErrorf("replacement must be a file sink")
	}

	d.swapMu.Lock()
	defer d.swapMu.Unlock()

	release, err := d.quiesce()
	if err != nil {
		return nil, err
	}

	var old Sink
	d.sinksMu.Lock()
	list := make([]Sink, 0, len(d.sinks)+1)
	for _, s := range d.sinks {
		if s.Kind() == SinkFile && old == nil {
			old = s
			list = append(list, next)
			continue
		}
		list = append(list, s)
	}
	if old == nil {
		list = append(list, next)
	}
	d.sinks = list
	d.sinksMu.Unlock()

	release()

	if old == nil {
		return nil, nil
	}
	// A failure streak ends with the sink that had it
	d.markRecovered(old)
	var closeErr error
	if err := old.Flush(); err != nil && !errors.Is(err, ErrSinkClosed) {
		closeErr = err
	}
	closeErr = combineErrors(closeErr, old.Close())
	return old, closeErr
}

// StopIntake makes later Enqueue calls fail with ErrPipelineClosed and lets
// the workers finish what is queued
func (d *Dispatcher) StopIntake() {
	d.intakeMu.Lock()
	defer d.intakeMu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.closing.Store(true)
	for _, ch := range d.shards {
		close(ch)
	}
}

// Closed reports whether intake has stopped
func (d *Dispatcher) Closed() bool {
	return d.closing.Load()
}

// Shutdown stops intake, drains the queue, joins the workers, then flushes
// and closes every sink. Later calls wait for the first one and return nil.
func (d *Dispatcher) Shutdown() error {
	if !d.shutdownCalled.CompareAndSwap(false, true) {
		<-d.shutdownDone
		return nil
	}
	defer close(d.shutdownDone)

	d.StopIntake()
	d.workersWG.Wait()

	close(d.flushStop)
	<-d.flushDone

	var finalErr error
	for _, s := range d.snapshot() {
		if err := s.Flush(); err != nil && !errors.Is(err, ErrSinkClosed) {
			finalErr = combineErrors(finalErr, err)
		}
		if err := s.Close(); err != nil {
			finalErr = combineErrors(finalErr, err)
		}
	}
	return finalErr
}

// Dropped returns the number of records refused under PolicyDropNewest
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Stats returns the dispatcher counters
func (d *Dispatcher) Stats() DispatcherStats {
	depth, capacity := 0, 0
	for _, ch := range d.shards {
		depth += len(ch)
		capacity += cap(ch)
	}
	return DispatcherStats{
		Enqueued:      d.enqueued.Load(),
		Processed:     d.processed.Load(),
		Dropped:       d.dropped.Load(),
		SinkErrors:    d.sinkErrors.Load(),
		QueueDepth:    depth,
		QueueCapacity: capacity,
		Workers:       len(d.shards),
	}
}

// Flush waits until every record accepted before the call has been delivered,
// then flushes all sinks. Each shard acknowledges a marker queued behind its
// pending records, so a stalled shard holds Flush back until timeout.
func (d *Dispatcher) Flush(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	d.intakeMu.RLock()
	if d.closed {
		d.intakeMu.RUnlock()
		return ErrPipelineClosed
	}
	// Buffered so a worker never blocks on a caller that gave up
	confirm := make(chan struct{}, len(d.shards))
	sent := 0
	for _, ch := range d.shards {
		select {
		case ch <- item{ack: confirm}:
			sent++
		case <-timer.C:
			d.intakeMu.RUnlock()
			return fmtErrorf("timeout queueing flush request (%v)", timeout)
		}
	}
	d.intakeMu.RUnlock()

	for acked := 0; acked < sent; acked++ {
		select {
		case <-confirm:
		case <-timer.C:
			return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
		}
	}
	d.flushAll()
	return nil
}
