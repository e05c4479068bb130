package redstone

import (
	"sync"
)

// Metrics tracks counters of a Network for observability. A nil *Metrics discards every update.
type Metrics struct {
	mu sync.Mutex

	ops          uint64
	writes       uint64
	backpressure uint64
	queue        int
}

// MetricsSnapshot is a copy of the counters held by Metrics at one point in time.
type MetricsSnapshot struct {
	// Ops is the amount of wire recalculations performed.
	Ops uint64
	// Writes is the amount of recalculations that changed the power of a wire.
	Writes uint64
	// Backpressure is the amount of settles that ran out of budget.
	Backpressure uint64
	// Queue is the amount of positions left queued after the last settle.
	Queue int
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// AddOps increments the recalculation counter.
func (m *Metrics) AddOps(value uint64) {
	if m == nil || value == 0 {
		return
	}
	m.mu.Lock()
	m.ops += value
	m.mu.Unlock()
}

// AddWrites increments the write counter.
func (m *Metrics) AddWrites(value uint64) {
	if m == nil || value == 0 {
		return
	}
	m.mu.Lock()
	m.writes += value
	m.mu.Unlock()
}

// IncBackpressure increments the backpressure counter.
func (m *Metrics) IncBackpressure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.backpressure++
	m.mu.Unlock()
}

// SetQueueSize stores the current queue size gauge.
func (m *Metrics) SetQueueSize(size int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.queue = size
	m.mu.Unlock()
}

// Snapshot returns the current values of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{Ops: m.ops, Writes: m.writes, Backpressure: m.backpressure, Queue: m.queue}
}
