// Package observability collects in-process metrics for scheduling
// operations. There is no external metrics backend; the numbers are served
// by the system metrics endpoint for the admin overview.
package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates counters and latency samples per operation.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	opMetrics map[string]*OpMetrics

	// durations is a FIFO window of recent latencies for percentile
	// estimates.
	durations    []time.Duration
	maxDurations int
}

// OpMetrics holds counters for a single operation.
type OpMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
	recordsWritten atomic.Int64
}

// NewMetrics creates a new metrics collector keeping the last maxDurations
// latency samples.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		opMetrics:    make(map[string]*OpMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records one invocation of an operation.
func (m *Metrics) RecordRequest(op string) {
	m.requestTotal.Add(1)
	m.getOpMetrics(op).executionCount.Add(1)
}

// RecordFailure records a failed invocation.
func (m *Metrics) RecordFailure(op string) {
	m.requestFailed.Add(1)
	m.getOpMetrics(op).errorCount.Add(1)
}

// RecordDuration records an invocation latency.
func (m *Metrics) RecordDuration(op string, duration time.Duration) {
	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()

	m.getOpMetrics(op).totalDuration.Add(duration.Milliseconds())
}

// RecordWritten adds to the count of schedule records written by an
// operation.
func (m *Metrics) RecordWritten(op string, count int) {
	m.getOpMetrics(op).recordsWritten.Add(int64(count))
}

func (m *Metrics) getOpMetrics(op string) *OpMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.opMetrics[op]
	if !ok {
		om = &OpMetrics{}
		m.opMetrics[op] = om
	}
	return om
}

// Reset clears all metrics. Test helper.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.opMetrics = make(map[string]*OpMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time view of the collector.
type MetricsSnapshot struct {
	RequestTotal  int64
	RequestFailed int64
	P50LatencyMs  int64
	P95LatencyMs  int64
	Ops           map[string]*OpMetricsSnapshot
}

// OpMetricsSnapshot is the per-operation part of a snapshot.
type OpMetricsSnapshot struct {
	ExecutionCount  int64
	ErrorCount      int64
	AverageDuration int64
	RecordsWritten  int64
}

// SuccessRate returns the success rate as a percentage. An idle collector
// reports 100.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}

// Snapshot captures current counters and latency percentiles.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make(map[string]*OpMetricsSnapshot, len(m.opMetrics))
	for op, om := range m.opMetrics {
		count := om.executionCount.Load()
		var avg int64
		if count > 0 {
			avg = om.totalDuration.Load() / count
		}
		ops[op] = &OpMetricsSnapshot{
			ExecutionCount:  count,
			ErrorCount:      om.errorCount.Load(),
			AverageDuration: avg,
			RecordsWritten:  om.recordsWritten.Load(),
		}
	}

	p50, p95 := percentilesLocked(m.durations)
	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		P50LatencyMs:  p50,
		P95LatencyMs:  p95,
		Ops:           ops,
	}
}

func percentilesLocked(durations []time.Duration) (p50, p95 int64) {
	if len(durations) == 0 {
		return 0, 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	at := func(q float64) int64 {
		idx := int(q * float64(len(sorted)-1))
		return sorted[idx].Milliseconds()
	}
	return at(0.50), at(0.95)
}
