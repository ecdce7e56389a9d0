package simtemp

import (
	"sync/atomic"
	"time"

	"github.com/PyCharmGuy123/simtemp/internal/telemetry"
)

// LatencyBuckets are the sample-generation tick latency histogram buckets
// in nanoseconds, log-spaced from 1us to 10ms — the same bucket scheme the
// teacher codebase uses for I/O operation latency, repointed at tick
// synthesis time instead of block I/O completion time.
var LatencyBuckets = []uint64{
	1_000,       // 1us
	10_000,      // 10us
	100_000,     // 100us
	1_000_000,   // 1ms
	10_000_000,  // 10ms
}

const numLatencyBuckets = 5

// Metrics tracks the device's operational statistics: the three spec
// counters, plus tick-latency timing.
type Metrics struct {
	Updates atomic.Uint64
	Alerts  atomic.Uint64
	Drops   atomic.Uint64

	TotalLatencyNs atomic.Uint64
	TickCount      atomic.Uint64

	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics returns a Metrics stamped with the current start time.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordTick records one producer tick, counted as one update: whether it
// armed the alert latch, whether it evicted a record, and how long
// synthesis + commit took.
func (m *Metrics) RecordTick(latencyNs uint64, armed, evicted bool) {
	m.Updates.Add(1)
	if armed {
		m.Alerts.Add(1)
	}
	if evicted {
		m.Drops.Add(1)
	}
	m.TotalLatencyNs.Add(latencyNs)
	m.TickCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the device as stopped, freezing uptime calculations.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics' derived statistics.
type MetricsSnapshot struct {
	Updates uint64
	Alerts  uint64
	Drops   uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyHistogram [numLatencyBuckets]uint64
}

// Snapshot computes a point-in-time MetricsSnapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Updates: m.Updates.Load(),
		Alerts:  m.Alerts.Load(),
		Drops:   m.Drops.Load(),
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	tickCount := m.TickCount.Load()
	if tickCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / tickCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}
	return snap
}

// MetricsObserver implements telemetry.Observer by recording into a
// Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns a telemetry.Observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTick(latencyNs uint64, armed, evicted bool) {
	o.metrics.RecordTick(latencyNs, armed, evicted)
}

var _ telemetry.Observer = (*MetricsObserver)(nil)
