// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

// guard is the critical-section mask. While depth is non-zero, preemption is
// deferred: a timer expiry stays pending until the outermost leave, which is
// a safe point.
//
// Every thread carries its own saved depth (thread.mask), swapped in and out
// by dispatch, so a thread always resumes with the depth it switched out at.
type guard struct {
	depth int
}

// enter masks preemption, and returns the running thread, which must be
// passed to the matching leave.
func (s *Scheduler) enter() *thread {
	s.guard.depth++
	return s.running()
}

// leave unmasks preemption, delivering any expiry that became pending while
// masked, once the outermost level is left.
//
// It is a no-op for a thread that is no longer alive (it terminated itself,
// or was cancelled), as the unwinding goroutine no longer owns the guard.
func (s *Scheduler) leave(t *thread) {
	if t != nil && t.dead {
		return
	}
	if s.guard.depth <= 0 {
		panic(`uthreads: guard underflow`)
	}
	if s.guard.depth > 1 {
		s.guard.depth--
		return
	}
	for s.state.Load() == StateRunning && s.timer.Poll() {
		// still masked, dispatch must not be re-entered
		s.dispatch(reasonPreempt)
	}
	s.guard.depth--
}
