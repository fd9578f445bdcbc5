// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a one-shot preemption timer. Expiries are latched until consumed
// by Poll, and coalesce, in the same manner as a pending signal.
//
// Arm is called by the scheduler each time a thread is dispatched. Poll is
// called at every safe point of the running thread. Implementations must
// allow Poll to be called concurrently with the timer's own expiry.
type Timer interface {
	// Arm schedules a single expiry after d, replacing (and discarding) any
	// expiry that is armed or pending.
	Arm(d time.Duration) error

	// Poll consumes a pending expiry, reporting whether there was one.
	Poll() bool

	// Stop disarms the timer and releases any resources.
	Stop() error
}

// wallClockTimer is a Timer measuring wall-clock time.
type wallClockTimer struct {
	timer   *time.Timer
	mu      sync.Mutex
	gen     uint64
	pending atomic.Bool
}

func newWallClockTimer() *wallClockTimer {
	return new(wallClockTimer)
}

func (x *wallClockTimer) Arm(d time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.gen++
	gen := x.gen
	if x.timer != nil {
		x.timer.Stop()
	}
	x.pending.Store(false)
	x.timer = time.AfterFunc(d, func() {
		x.mu.Lock()
		defer x.mu.Unlock()
		// stale expiries must not preempt the next quantum
		if gen == x.gen {
			x.pending.Store(true)
		}
	})
	return nil
}

func (x *wallClockTimer) Poll() bool {
	return x.pending.Swap(false)
}

func (x *wallClockTimer) Stop() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.gen++
	if x.timer != nil {
		x.timer.Stop()
		x.timer = nil
	}
	x.pending.Store(false)
	return nil
}
