package uthreads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_String(t *testing.T) {
	for state, want := range map[State]string{
		StateUninitialized: "Uninitialized",
		StateRunning:       "Running",
		StateTerminating:   "Terminating",
		StateTerminated:    "Terminated",
		State(99):          "Unknown",
	} {
		assert.Equal(t, want, state.String())
	}
}

func TestThreadState_String(t *testing.T) {
	for state, want := range map[ThreadState]string{
		ThreadRunning:         "Running",
		ThreadReady:           "Ready",
		ThreadBlocked:         "Blocked",
		ThreadSleeping:        "Sleeping",
		ThreadBlockedSleeping: "BlockedSleeping",
		ThreadState(9):        "ThreadState(9)",
	} {
		assert.Equal(t, want, state.String())
	}
}

func TestFastState_TryTransition(t *testing.T) {
	var s fastState
	assert.Equal(t, StateUninitialized, s.Load())
	assert.True(t, s.TryTransition(StateUninitialized, StateRunning))
	assert.False(t, s.TryTransition(StateUninitialized, StateRunning))
	assert.Equal(t, StateRunning, s.Load())
	s.Store(StateTerminated)
	assert.Equal(t, StateTerminated, s.Load())
}
