// FILE: constant.go
package dailylog

import (
	"fmt"
	"time"
)

// Log level constants
const (
	LevelTrace    int64 = -8
	LevelDebug    int64 = -4
	LevelInfo     int64 = 0
	LevelWarn     int64 = 4
	LevelError    int64 = 8
	LevelCritical int64 = 12
)

// OverflowPolicy governs Enqueue when the queue is full
type OverflowPolicy int

const (
	// PolicyBlock stalls the producer until space frees
	PolicyBlock OverflowPolicy = iota
	// PolicyDropNewest refuses the incoming record and counts it
	PolicyDropNewest
)

// String returns the config spelling of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case PolicyBlock:
		return "block"
	case PolicyDropNewest:
		return "drop_newest"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// SinkKind tags sink variants so the dispatcher can enforce one console and one file sink
type SinkKind int

const (
	SinkCustom SinkKind = iota
	SinkConsole
	SinkFile
)

// String returns the sink kind name
func (k SinkKind) String() string {
	switch k {
	case SinkConsole:
		return "console"
	case SinkFile:
		return "file"
	default:
		return "custom"
	}
}

// Environment
const (
	// EnvLogDir overrides the configured log directory
	EnvLogDir = "APP_LOG_DIR"
	// defaultLogDir is used when neither env nor config name a directory
	defaultLogDir = "logs"
	// dateLayout is the calendar day embedded in file names
	dateLayout = "2006-01-02"
)

// Storage
const (
	// File and directory permissions
	logFilePerm = 0644
	logDirPerm  = 0755
	// Size multiplier for MB
	sizeMultiplier = 1024 * 1024
	// Write buffer per file sink
	fileBufferSize = 32 * 1024
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
)

// producerInternal identifies records emitted by the pipeline itself
const producerInternal uint64 = 0
