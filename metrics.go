package dailylog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports pipeline statistics to prometheus
type Collector struct {
	p *Pipeline

	enqueued      *prometheus.Desc
	processed     *prometheus.Desc
	dropped       *prometheus.Desc
	sinkErrors    *prometheus.Desc
	queueDepth    *prometheus.Desc
	queueCapacity *prometheus.Desc
	rotations     *prometheus.Desc
	rotationFails *prometheus.Desc
	deletions     *prometheus.Desc
	schedulerUp   *prometheus.Desc
	diskOK        *prometheus.Desc
}

// NewCollector returns a collector reading p on every scrape
func NewCollector(p *Pipeline) *Collector {
	constLabels := prometheus.Labels{"instance_id": p.InstanceID()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("dailylog_"+name, help, nil, constLabels)
	}
	return &Collector{
		p:             p,
		enqueued:      desc("records_enqueued_total", "Records accepted by the queue"),
		processed:     desc("records_processed_total", "Records delivered to the sinks"),
		dropped:       desc("records_dropped_total", "Records refused because the queue was full"),
		sinkErrors:    desc("sink_errors_total", "Failed sink writes"),
		queueDepth:    desc("queue_depth", "Records waiting in the queue"),
		queueCapacity: desc("queue_capacity", "Total queue capacity"),
		rotations:     desc("rotations_total", "Successful daily file swaps"),
		rotationFails: desc("rotation_failures_total", "Rotations that could not open the new file"),
		deletions:     desc("retention_deletions_total", "Files removed by retention cleanup"),
		schedulerUp:   desc("scheduler_running", "1 while the rotation scheduler is running"),
		diskOK:        desc("disk_status_ok", "0 while the log directory is short of free space"),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.enqueued
	ch <- c.processed
	ch <- c.dropped
	ch <- c.sinkErrors
	ch <- c.queueDepth
	ch <- c.queueCapacity
	ch <- c.rotations
	ch <- c.rotationFails
	ch <- c.deletions
	ch <- c.schedulerUp
	ch <- c.diskOK
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.p.Stats()

	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	counter(c.enqueued, st.Enqueued)
	counter(c.processed, st.Processed)
	counter(c.dropped, st.Dropped)
	counter(c.sinkErrors, st.SinkErrors)
	gauge(c.queueDepth, float64(st.QueueDepth))
	gauge(c.queueCapacity, float64(st.QueueCapacity))
	counter(c.rotations, st.Rotations)
	counter(c.rotationFails, st.RotationFailures)
	counter(c.deletions, st.Deletions)

	running := 0.0
	if st.SchedulerState != StateTerminated {
		running = 1
	}
	gauge(c.schedulerUp, running)

	diskOK := 0.0
	if st.DiskStatusOK {
		diskOK = 1
	}
	gauge(c.diskOK, diskOK)
}

var _ prometheus.Collector = (*Collector)(nil)
