// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"slices"
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time copy of scheduler metrics, see
// Scheduler.Metrics.
type MetricsSnapshot struct {
	// Quantum is the distribution of wall-clock time between dispatches.
	Quantum QuantumStats

	// Dispatches is the number of scheduling decisions, excluding Init.
	Dispatches uint64
	// Preemptions is the number of decisions caused by timer expiry.
	Preemptions uint64
	// Yields is the number of decisions caused by Yield.
	Yields uint64
	// Suspensions is the number of decisions caused by a thread blocking
	// or sleeping itself.
	Suspensions uint64
	// Exits is the number of decisions caused by a thread terminating itself.
	Exits uint64
	// Spawns is the number of threads successfully spawned.
	Spawns uint64
	// Terminations is the number of threads terminated, by any means.
	Terminations uint64
	// UsageErrors is the number of operations failed with a *UsageError.
	UsageErrors uint64
	// Panics is the number of entry functions that panicked.
	Panics uint64
}

// QuantumStats summarises recent quantum lengths.
type QuantumStats struct {
	P50     time.Duration
	P90     time.Duration
	P99     time.Duration
	Max     time.Duration
	Mean    time.Duration
	Samples int
}

// quantumSampleSize is the number of quantum lengths retained.
const quantumSampleSize = 1000

// metrics is only written by the baton holder, but may be read from any
// goroutine, via Scheduler.Metrics.
type metrics struct {
	mu       sync.Mutex
	last     time.Time
	counters MetricsSnapshot
	samples  [quantumSampleSize]time.Duration
	idx      int
	count    int
}

func (m *metrics) dispatched(reason dispatchReason, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters.Dispatches++
	switch reason {
	case reasonPreempt:
		m.counters.Preemptions++
	case reasonYield:
		m.counters.Yields++
	case reasonSuspend:
		m.counters.Suspensions++
	case reasonExit:
		m.counters.Exits++
	}
	if !m.last.IsZero() {
		m.samples[m.idx] = now.Sub(m.last)
		m.idx++
		if m.idx >= quantumSampleSize {
			m.idx = 0
		}
		if m.count < quantumSampleSize {
			m.count++
		}
	}
	m.last = now
}

func (m *metrics) add(fn func(c *MetricsSnapshot)) {
	m.mu.Lock()
	fn(&m.counters)
	m.mu.Unlock()
}

func (m *metrics) snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.counters
	if m.count == 0 {
		return snap
	}
	sorted := slices.Clone(m.samples[:m.count])
	slices.Sort(sorted)
	var sum time.Duration
	for _, v := range sorted {
		sum += v
	}
	snap.Quantum = QuantumStats{
		P50:     sorted[percentileIndex(m.count, 50)],
		P90:     sorted[percentileIndex(m.count, 90)],
		P99:     sorted[percentileIndex(m.count, 99)],
		Max:     sorted[m.count-1],
		Mean:    sum / time.Duration(m.count),
		Samples: m.count,
	}
	return snap
}

// percentileIndex computes the index for a given percentile (0-100).
func percentileIndex(n, p int) int {
	index := (p * n) / 100
	if index >= n {
		return n - 1
	}
	return index
}
