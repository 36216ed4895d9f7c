// FILE: pipeline.go
package dailylog

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lixenwraith/dailylog/formatter"
)

// Pipeline is the handle returned by Initialize. It owns the dispatcher,
// the sinks and the rotation scheduler, and logs as producer 0.
type Pipeline struct {
	*Producer

	id    uuid.UUID
	cfg   *Config
	clock Clock

	minLevel atomic.Int64

	dispatcher *Dispatcher
	scheduler  *Scheduler
	store      *logStore
	retention  *retention

	state     State
	producers atomic.Uint64

	heartbeatStop chan struct{}
	heartbeatDone chan struct{}
	diskCheckStop chan struct{}
	diskCheckDone chan struct{}
	shutdownDone  chan struct{}
}

// Option adjusts Initialize for embedding and tests
type Option func(*options)

type options struct {
	clock       Clock
	console     io.Writer
	fileFactory FileSinkFactory
	freeSpace   func(dir string) (int64, error)
}

// WithClock replaces the wall clock used for record stamps and rotation deadlines
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithConsoleWriter sends console output to w instead of the configured stream
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithFileSinkFactory replaces the builder of dated file sinks
func WithFileSinkFactory(f FileSinkFactory) Option {
	return func(o *options) { o.fileFactory = f }
}

// Initialize validates cfg, prepares the log directory, opens the console
// and dated file sinks and starts the dispatcher and rotation scheduler.
// A nil cfg means DefaultConfig. APP_LOG_DIR takes precedence over the
// configured directory. Any failure here is fatal for the caller.
func Initialize(cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.Clone()
	}
	cfg.applyEnv()

	resolved, err := cfg.resolve()
	if err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}

	o := options{clock: SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = SystemClock{}
	}

	if err := ensureLogDirectory(cfg.Directory); err != nil {
		return nil, err
	}

	store := newLogStore(cfg)
	factory := o.fileFactory
	if factory == nil {
		factory = fileSinkFactory(cfg, resolved.fileLevel)
	}

	start := o.clock.Now()
	fileSink, err := factory(store.pathFor(start))
	if err != nil {
		return nil, fmtErrorf("failed to open log file: %w", err)
	}

	sinks := []Sink{}
	if cfg.EnableConsole {
		w := o.console
		if w == nil {
			w = consoleWriter(cfg.ConsoleTarget)
		}
		f := formatter.New(formatter.ModeColorize).Pattern(cfg.ConsolePattern)
		sinks = append(sinks, NewConsoleSink(w, resolved.consoleLevel, f))
	}
	sinks = append(sinks, fileSink)

	d, err := NewDispatcher(DispatcherOptions{
		QueueSize:      int(cfg.QueueSize),
		Workers:        int(cfg.Workers),
		Policy:         resolved.policy,
		FlushInterval:  time.Duration(cfg.FlushIntervalMs) * time.Millisecond,
		ErrorsToStderr: cfg.InternalErrorsToStderr,
		Now:            o.clock.Now,
	}, sinks...)
	if err != nil {
		fileSink.Close()
		return nil, err
	}

	// The scheduler must not reach the dispatcher through anything but its
	// weak pointer, so its hooks only see the store and the retention state
	ret := newRetention(cfg, store, o.clock)
	ret.freeSpace = o.freeSpace
	sched, err := NewScheduler(d, SchedulerOptions{
		Clock:    o.clock,
		PathFor:  store.pathFor,
		NewSink:  factory,
		OnRotate: ret.check,
	})
	if err != nil {
		d.Shutdown()
		return nil, err
	}

	p := &Pipeline{
		id:           uuid.New(),
		cfg:          cfg,
		clock:        o.clock,
		dispatcher:   d,
		scheduler:    sched,
		store:        store,
		retention:    ret,
		shutdownDone: make(chan struct{}),
	}
	p.Producer = &Producer{id: producerInternal, name: "main", pipe: p}
	p.minLevel.Store(resolved.minLevel)
	p.state.StartTime.Store(start)
	p.state.IsInitialized.Store(true)

	sched.Start()
	p.startHeartbeat(cfg.HeartbeatIntervalS)
	p.logBanner()

	ret.check(d, p.ActiveFile())
	p.startDiskCheck(cfg.DiskCheckIntervalMs)

	return p, nil
}

// logBanner writes the startup lines
func (p *Pipeline) logBanner() {
	wd, err := os.Getwd()
	if err != nil {
		wd = "unknown"
	}
	p.Info("===== Application starting =====", "instance", p.id.String())
	p.Info("Log file:", p.ActiveFile())
	p.Info("Log directory:", p.cfg.Directory)
	p.Info("Working directory:", wd)
	p.Info("Logging system initialized")
}

// NewProducer returns a producer with its own id. Records of one producer
// are delivered in the order they were enqueued.
func (p *Pipeline) NewProducer(name string) *Producer {
	return &Producer{id: p.producers.Add(1), name: name, pipe: p}
}

// InstanceID returns the id generated for this pipeline
func (p *Pipeline) InstanceID() string {
	return p.id.String()
}

// Config returns a copy of the effective configuration
func (p *Pipeline) Config() *Config {
	return p.cfg.Clone()
}

// Dispatcher returns the underlying dispatcher
func (p *Pipeline) Dispatcher() *Dispatcher {
	return p.dispatcher
}

// Scheduler returns the rotation scheduler
func (p *Pipeline) Scheduler() *Scheduler {
	return p.scheduler
}

// ActiveFile returns the path of the current dated file, empty if the file
// sink does not report one
func (p *Pipeline) ActiveFile() string {
	if s, ok := p.dispatcher.FileSink().(interface{ Path() string }); ok {
		return s.Path()
	}
	return ""
}

// SetLevel changes the pipeline-wide minimum level
func (p *Pipeline) SetLevel(level int64) {
	p.minLevel.Store(level)
}

// GetLevel returns the pipeline-wide minimum level
func (p *Pipeline) GetLevel() int64 {
	return p.minLevel.Load()
}

// SetSinkLevel changes the threshold of the console or file sink
func (p *Pipeline) SetSinkLevel(kind SinkKind, level int64) bool {
	return p.dispatcher.SetSinkLevel(kind, level)
}

// Stats is a point-in-time view of the pipeline
type Stats struct {
	DispatcherStats
	InstanceID        string
	Uptime            time.Duration
	ActiveFile        string
	SchedulerState    RotationState
	NextRotation      time.Time
	Rotations         uint64
	RotationFailures  uint64
	Deletions         uint64
	DiskStatusOK      bool
	HeartbeatSequence uint64
}

// Stats returns the pipeline counters
func (p *Pipeline) Stats() Stats {
	return Stats{
		DispatcherStats:   p.dispatcher.Stats(),
		InstanceID:        p.id.String(),
		Uptime:            p.state.uptime(p.clock.Now()),
		ActiveFile:        p.ActiveFile(),
		SchedulerState:    p.scheduler.State(),
		NextRotation:      p.scheduler.NextDeadline(),
		Rotations:         p.scheduler.Rotations(),
		RotationFailures:  p.scheduler.Failures(),
		Deletions:         p.retention.deleted.Load(),
		DiskStatusOK:      p.retention.diskStatusOK.Load(),
		HeartbeatSequence: p.state.HeartbeatSequence.Load(),
	}
}
