// FILE: heartbeat.go
package dailylog

import (
	"fmt"
	"runtime"
	"time"
)

// startHeartbeat launches the periodic statistics goroutine, 0 disables it
func (p *Pipeline) startHeartbeat(intervalS int64) {
	if intervalS <= 0 {
		return
	}
	p.heartbeatStop = make(chan struct{})
	p.heartbeatDone = make(chan struct{})

	ticker := time.NewTicker(time.Duration(intervalS) * time.Second)
	go func() {
		defer close(p.heartbeatDone)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.logHeartbeat()
			case <-p.heartbeatStop:
				return
			}
		}
	}()
}

// stopHeartbeat stops and joins the heartbeat goroutine
func (p *Pipeline) stopHeartbeat() {
	if p.heartbeatStop == nil {
		return
	}
	close(p.heartbeatStop)
	<-p.heartbeatDone
}

// logHeartbeat writes the pipeline and runtime statistics records
func (p *Pipeline) logHeartbeat() {
	if p.state.ShutdownCalled.Load() {
		return
	}
	p.logProcHeartbeat()
	p.logSysHeartbeat()
}

// logProcHeartbeat logs queue, sink and rotation statistics
func (p *Pipeline) logProcHeartbeat() {
	sequence := p.state.HeartbeatSequence.Add(1)
	st := p.Stats()

	procArgs := []any{
		"type", "proc",
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", st.Uptime.Hours()),
		"processed_logs", st.Processed,
		"queue_depth", st.QueueDepth,
		"rotations", st.Rotations,
		"deleted_files", st.Deletions,
		"disk_status_ok", st.DiskStatusOK,
	}

	// Only report counters that have moved
	if st.Dropped > 0 {
		procArgs = append(procArgs, "dropped_logs", st.Dropped)
	}
	if st.SinkErrors > 0 {
		procArgs = append(procArgs, "sink_errors", st.SinkErrors)
	}
	if st.RotationFailures > 0 {
		procArgs = append(procArgs, "rotation_failures", st.RotationFailures)
	}

	p.writeHeartbeatRecord(procArgs)
}

// logSysHeartbeat logs system/runtime statistics heartbeat
func (p *Pipeline) logSysHeartbeat() {
	sequence := p.state.HeartbeatSequence.Load()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sysArgs := []any{
		"type", "sys",
		"sequence", sequence,
		"alloc_mb", fmt.Sprintf("%.2f", float64(memStats.Alloc)/(1000*1000)),
		"sys_mb", fmt.Sprintf("%.2f", float64(memStats.Sys)/(1000*1000)),
		"num_gc", memStats.NumGC,
		"num_goroutine", runtime.NumGoroutine(),
	}

	p.writeHeartbeatRecord(sysArgs)
}

// writeHeartbeatRecord sends a heartbeat through the internal producer lane
func (p *Pipeline) writeHeartbeatRecord(args []any) {
	args = append([]any{"HEARTBEAT"}, args...)
	_ = p.dispatcher.Enqueue(internalRecord(p.clock.Now(), LevelInfo, args...))
}
