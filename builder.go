// FILE: builder.go
package dailylog

import "io"

// Builder provides a fluent API for building pipeline configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Config returns a copy of the configuration built so far
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	cfg := b.cfg.Clone()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build initializes a new Pipeline with the specified configuration.
func (b *Builder) Build() (*Pipeline, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}
	return Initialize(cfg, b.opts...)
}

// setLevel validates a level name before storing it
func (b *Builder) setLevel(dst *string, level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := Level(level); err != nil {
		b.err = err
		return b
	}
	*dst = level
	return b
}

// Level sets the pipeline-wide minimum level.
func (b *Builder) Level(level string) *Builder {
	return b.setLevel(&b.cfg.Level, level)
}

// Name sets the file name prefix.
func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

// Directory sets the log directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Extension sets the file extension.
func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

// EnableConsole enables the console sink.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleTarget selects "stdout" or "stderr".
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// ConsoleLevel sets the console threshold.
func (b *Builder) ConsoleLevel(level string) *Builder {
	return b.setLevel(&b.cfg.ConsoleLevel, level)
}

// FileLevel sets the file threshold.
func (b *Builder) FileLevel(level string) *Builder {
	return b.setLevel(&b.cfg.FileLevel, level)
}

// ConsolePattern sets the console template.
func (b *Builder) ConsolePattern(pattern string) *Builder {
	b.cfg.ConsolePattern = pattern
	return b
}

// FilePattern sets the file template.
func (b *Builder) FilePattern(pattern string) *Builder {
	b.cfg.FilePattern = pattern
	return b
}

// QueueSize sets the total queue capacity.
func (b *Builder) QueueSize(size int64) *Builder {
	b.cfg.QueueSize = size
	return b
}

// Workers sets the number of drain workers.
func (b *Builder) Workers(n int64) *Builder {
	b.cfg.Workers = n
	return b
}

// OverflowPolicy sets "block" or "drop_newest".
func (b *Builder) OverflowPolicy(policy string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParsePolicy(policy); err != nil {
		b.err = err
		return b
	}
	b.cfg.OverflowPolicy = policy
	return b
}

// FlushIntervalMs sets the periodic flush interval.
func (b *Builder) FlushIntervalMs(ms int64) *Builder {
	b.cfg.FlushIntervalMs = ms
	return b
}

// MaxSizeMB enables size rollover within a day.
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeMB = size
	return b
}

// RetentionDays sets how many days of files are kept.
func (b *Builder) RetentionDays(days int64) *Builder {
	b.cfg.RetentionDays = days
	return b
}

// MaxTotalSizeMB caps the size of all dated files.
func (b *Builder) MaxTotalSizeMB(size int64) *Builder {
	b.cfg.MaxTotalSizeMB = size
	return b
}

// MinDiskFreeMB sets the free space the log directory should keep, 0 disables the check.
func (b *Builder) MinDiskFreeMB(size int64) *Builder {
	b.cfg.MinDiskFreeMB = size
	return b
}

// DiskCheckIntervalMs sets how often the disk limits are checked between rotations.
func (b *Builder) DiskCheckIntervalMs(interval int64) *Builder {
	b.cfg.DiskCheckIntervalMs = interval
	return b
}

// HeartbeatIntervalS sets the heartbeat interval, 0 disables it.
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// ConsoleWriter redirects console output.
func (b *Builder) ConsoleWriter(w io.Writer) *Builder {
	b.opts = append(b.opts, WithConsoleWriter(w))
	return b
}

// Clock replaces the wall clock.
func (b *Builder) Clock(c Clock) *Builder {
	b.opts = append(b.opts, WithClock(c))
	return b
}

// Example usage:
// p, err := dailylog.NewBuilder().
//
//	Directory("/var/log/app").
//	Level("debug").
//	ConsoleLevel("warn").
//	QueueSize(4096).
//	Build()
//
// if err == nil {
//
//	 defer p.Shutdown()
//	 p.Info("Pipeline initialized successfully")
//
// }
