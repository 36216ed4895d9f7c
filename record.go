// FILE: record.go
package dailylog

import (
	"time"

	"github.com/lixenwraith/dailylog/formatter"
)

// Record is a single log entry. It is built by the producer and never
// modified after Enqueue.
type Record struct {
	Time     time.Time
	Level    int64
	Producer uint64
	Message  string
}

// NewRecord builds a record stamped with the current time
func NewRecord(level int64, producer uint64, args ...any) Record {
	return Record{
		Time:     time.Now(),
		Level:    level,
		Producer: producer,
		Message:  formatter.Join(args...),
	}
}

// item is the queue element: a record, a rotation fence or a flush marker
type item struct {
	rec   Record
	fence *fence
	ack   chan<- struct{}
}

// internalRecord builds a record emitted by the pipeline itself
func internalRecord(now time.Time, level int64, args ...any) Record {
	return Record{
		Time:     now,
		Level:    level,
		Producer: producerInternal,
		Message:  formatter.Join(args...),
	}
}
