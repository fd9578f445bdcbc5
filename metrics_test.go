package uthreads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentileIndex(t *testing.T) {
	assert.Equal(t, 0, percentileIndex(1, 99))
	assert.Equal(t, 50, percentileIndex(100, 50))
	assert.Equal(t, 99, percentileIndex(100, 100))
	assert.Equal(t, 9, percentileIndex(10, 99))
}

func TestMetrics_snapshot(t *testing.T) {
	start := time.Unix(0, 0)
	m := &metrics{last: start}

	now := start
	for i := 1; i <= 100; i++ {
		now = now.Add(time.Duration(i) * time.Millisecond)
		m.dispatched(dispatchReason(i%4), now)
	}
	m.add(func(c *MetricsSnapshot) { c.Spawns += 2 })

	snap := m.snapshot()
	assert.Equal(t, uint64(100), snap.Dispatches)
	assert.Equal(t, uint64(25), snap.Preemptions)
	assert.Equal(t, uint64(25), snap.Yields)
	assert.Equal(t, uint64(25), snap.Suspensions)
	assert.Equal(t, uint64(25), snap.Exits)
	assert.Equal(t, uint64(2), snap.Spawns)
	assert.Equal(t, 100, snap.Quantum.Samples)
	assert.Equal(t, 51*time.Millisecond, snap.Quantum.P50)
	assert.Equal(t, 91*time.Millisecond, snap.Quantum.P90)
	assert.Equal(t, 100*time.Millisecond, snap.Quantum.P99)
	assert.Equal(t, 100*time.Millisecond, snap.Quantum.Max)
	assert.Equal(t, 50500*time.Microsecond, snap.Quantum.Mean)
}

func TestMetrics_rollingWindow(t *testing.T) {
	now := time.Unix(0, 0)
	m := &metrics{last: now}
	for i := 0; i < quantumSampleSize+10; i++ {
		now = now.Add(time.Millisecond)
		m.dispatched(reasonYield, now)
	}
	snap := m.snapshot()
	assert.Equal(t, quantumSampleSize, snap.Quantum.Samples)
	assert.Equal(t, uint64(quantumSampleSize+10), snap.Yields)
}

func TestMetrics_empty(t *testing.T) {
	var m metrics
	assert.Equal(t, MetricsSnapshot{}, m.snapshot())
}

func TestScheduler_Metrics(t *testing.T) {
	s := newTestScheduler(t, WithMetrics(true))

	var counter int
	s.spawn(t, spinner(s.Scheduler, &counter))
	s.yieldN(t, 2)
	_ = s.Block(0)

	snap := s.Metrics()
	assert.Equal(t, uint64(4), snap.Dispatches)
	assert.Equal(t, uint64(4), snap.Yields)
	assert.Equal(t, uint64(1), snap.Spawns)
	assert.Equal(t, uint64(1), snap.UsageErrors)
	assert.Equal(t, 4, snap.Quantum.Samples)
}
