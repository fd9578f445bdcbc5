// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"fmt"
	"sync/atomic"
)

// State represents the lifecycle of a Scheduler.
//
//	StateUninitialized (0) → StateRunning (1)     [Init]
//	StateRunning (1)       → StateTerminating (2) [Terminate(0)]
//	StateTerminating (2)   → StateTerminated (3)  [resources released]
//	StateTerminated (3)    → (terminal)
type State uint32

const (
	// StateUninitialized is the zero value, for a Scheduler not created by Init.
	StateUninitialized State = iota
	// StateRunning indicates threads are being scheduled.
	StateRunning
	// StateTerminating indicates Terminate(0) is releasing resources.
	StateTerminating
	// StateTerminated indicates the scheduler is fully shut down.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateRunning:
		return "Running"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is the lifecycle state, readable from any goroutine.
type fastState struct {
	v atomic.Uint32
}

func (s *fastState) Load() State {
	return State(s.v.Load())
}

func (s *fastState) Store(state State) {
	s.v.Store(uint32(state))
}

// TryTransition attempts to atomically transition from one state to another.
func (s *fastState) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// ThreadState is the scheduling state of a single thread. Blocked and
// sleeping are independent conditions, a thread may be in both.
type ThreadState uint8

const (
	// ThreadRunning is the state of the thread holding the current quantum.
	ThreadRunning ThreadState = iota
	// ThreadReady is the state of a thread waiting in the ready queue.
	ThreadReady
	// ThreadBlocked is the state of an explicitly blocked thread.
	ThreadBlocked
	// ThreadSleeping is the state of a thread waiting on its wake quantum.
	ThreadSleeping
	// ThreadBlockedSleeping is the state of a thread that is both.
	ThreadBlockedSleeping
)

// String returns a human-readable representation of the thread state.
func (s ThreadState) String() string {
	switch s {
	case ThreadRunning:
		return "Running"
	case ThreadReady:
		return "Ready"
	case ThreadBlocked:
		return "Blocked"
	case ThreadSleeping:
		return "Sleeping"
	case ThreadBlockedSleeping:
		return "BlockedSleeping"
	default:
		return fmt.Sprintf("ThreadState(%d)", uint8(s))
	}
}
