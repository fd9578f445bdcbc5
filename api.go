// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"runtime"

	"github.com/joeycumines/go-uthreads/internal/fiber"
)

// Spawn creates a thread that will run entry, appending it to the tail of
// the ready queue, and returns its id, which is the smallest free id.
//
// The thread terminates when entry returns, panics, or calls
// runtime.Goexit (including via Terminate of its own id). In each of those
// cases, functions deferred by entry run as the thread, before the next
// thread is dispatched, and may call the Scheduler. When the thread is
// terminated by another, its deferred functions run while the other thread
// holds the baton: GetTid reports the terminated thread, Checkpoint does
// nothing, and methods that return an error fail with ErrThreadExiting.
func (s *Scheduler) Spawn(entry func()) (int, error) {
	if err := s.check(opSpawn, -1); err != nil {
		return -1, err
	}
	defer s.leave(s.enter())

	if entry == nil {
		return -1, s.usageError(opSpawn, -1, ErrNilEntry)
	}
	id, ok := s.tids.Acquire()
	if !ok {
		return -1, s.usageError(opSpawn, -1, ErrCapacity)
	}

	t := &thread{id: id, stack: s.stacks.Get()}
	t.fiber = fiber.New(
		func() { s.bootstrap(t, entry) },
		func() { s.orphaned(t) },
	)
	s.threads[id] = t
	s.ready.PushBack(t)

	if s.metrics != nil {
		s.metrics.add(func(c *MetricsSnapshot) { c.Spawns++ })
	}
	s.logger.Debug().
		Str("category", categorySched).
		Int("tid", id).
		Log("thread spawned")

	return id, nil
}

// Terminate terminates the thread with the given id, and releases its
// resources.
//
// Terminating the calling thread does not return: it unwinds the calling
// goroutine, as runtime.Goexit does, and the thread is removed once its
// deferred functions have run. Terminating thread 0 terminates every
// thread, stops the timer, and calls the exit hook with status 0. If the hook returns, the Scheduler is left in StateTerminated,
// and Terminate returns nil to thread 0 (or, if called by another thread,
// that thread exits, and thread 0 resumes).
func (s *Scheduler) Terminate(id int) error {
	if err := s.check(opTerminate, id); err != nil {
		return err
	}
	defer s.leave(s.enter())

	t := s.lookup(id)
	switch {
	case t == nil:
		return s.usageError(opTerminate, id, ErrInvalidID)
	case t == s.main:
		s.shutdown(s.current)
	case t == s.current:
		// the deferred leave runs first, then orphaned terminates t
		runtime.Goexit()
	default:
		s.cancel(t)
	}
	return nil
}

// Block blocks the thread with the given id, until it is resumed. Blocking
// the calling thread switches to the next ready thread. Blocking a thread
// that is already blocked has no effect. Thread 0 may not be blocked.
func (s *Scheduler) Block(id int) error {
	if err := s.check(opBlock, id); err != nil {
		return err
	}
	defer s.leave(s.enter())

	t := s.lookup(id)
	switch {
	case t == nil:
		return s.usageError(opBlock, id, ErrInvalidID)
	case t == s.main:
		return s.usageError(opBlock, id, ErrMainThread)
	case t.blocked:
		return nil
	}

	if t.ready() {
		s.ready.Remove(t)
		t.blocked = true
		s.blocked.Add(t)
	} else {
		// already in the blocked set, as a sleeper
		t.blocked = true
	}

	if t == s.current {
		s.dispatch(reasonSuspend)
	}
	return nil
}

// Resume clears the blocked condition of the thread with the given id. The
// thread rejoins the tail of the ready queue, unless it is still sleeping.
// Resuming a thread that is not blocked has no effect.
func (s *Scheduler) Resume(id int) error {
	if err := s.check(opResume, id); err != nil {
		return err
	}
	defer s.leave(s.enter())

	t := s.lookup(id)
	if t == nil {
		return s.usageError(opResume, id, ErrInvalidID)
	}
	if !t.blocked {
		return nil
	}
	t.blocked = false
	if !t.sleeping {
		s.blocked.Remove(t)
		s.ready.PushBack(t)
	}
	return nil
}

// Sleep suspends the calling thread for the given number of quanta,
// counted from the current quantum. The caller will be dispatched again no
// earlier than quantum GetTotalQuantums()+quanta+1. Values less than 1 give
// up the remainder of the quantum, like Yield, but via the blocked set.
// Thread 0 may not sleep.
func (s *Scheduler) Sleep(quanta int) error {
	if err := s.check(opSleep, -1); err != nil {
		return err
	}
	defer s.leave(s.enter())

	t := s.current
	if t == s.main {
		return s.usageError(opSleep, t.id, ErrMainThread)
	}

	s.ready.Remove(t)
	t.sleeping = true
	t.wakeAt = s.total + quanta
	s.blocked.Add(t)

	s.dispatch(reasonSuspend)
	return nil
}

// Yield ends the calling thread's quantum early, moving it to the tail of
// the ready queue. A new quantum starts even if no other thread is ready.
func (s *Scheduler) Yield() error {
	if err := s.check(opYield, -1); err != nil {
		return err
	}
	defer s.leave(s.enter())
	s.dispatch(reasonYield)
	return nil
}

// Checkpoint is a safe point: if the calling thread's quantum has expired,
// the next ready thread is dispatched before Checkpoint returns. Threads
// that run for longer than a quantum without calling other methods must
// call Checkpoint to be preempted.
func (s *Scheduler) Checkpoint() {
	if s == nil || s.state.Load() != StateRunning || s.unwinding != nil {
		return
	}
	s.leave(s.enter())
}

// GetTid returns the id of the calling thread, or -1 if the Scheduler was
// not initialized.
func (s *Scheduler) GetTid() int {
	if s == nil || s.state.Load() == StateUninitialized {
		return -1
	}
	if t := s.unwinding; t != nil {
		return t.id
	}
	defer s.leave(s.enter())
	return s.current.id
}

// GetTotalQuantums returns the number of quanta started since Init,
// including the current one. It is 1 immediately after Init.
func (s *Scheduler) GetTotalQuantums() int {
	if s == nil || s.state.Load() == StateUninitialized {
		return 0
	}
	if s.unwinding != nil {
		return s.total
	}
	defer s.leave(s.enter())
	return s.total
}

// GetQuantums returns the number of quanta the thread with the given id was
// dispatched for, including the current one, if it is running. It returns
// -1 and an error for an invalid id, or if the Scheduler was terminated.
func (s *Scheduler) GetQuantums(id int) (int, error) {
	if err := s.check(opGetQuantums, id); err != nil {
		return -1, err
	}
	defer s.leave(s.enter())

	t := s.lookup(id)
	if t == nil {
		return -1, s.usageError(opGetQuantums, id, ErrInvalidID)
	}
	return t.quantums, nil
}

// ThreadState returns the scheduling state of the thread with the given id.
func (s *Scheduler) ThreadState(id int) (ThreadState, error) {
	if err := s.check(opThreadState, id); err != nil {
		return 0, err
	}
	defer s.leave(s.enter())

	t := s.lookup(id)
	switch {
	case t == nil:
		return 0, s.usageError(opThreadState, id, ErrInvalidID)
	case t == s.current:
		return ThreadRunning, nil
	default:
		return t.threadState(), nil
	}
}

// Stack returns the stack buffer of the calling thread, which is scratch
// memory owned by the thread until it terminates. It is nil for thread 0.
func (s *Scheduler) Stack() []byte {
	if s == nil || s.state.Load() != StateRunning {
		return nil
	}
	if t := s.unwinding; t != nil {
		return t.stack
	}
	defer s.leave(s.enter())
	return s.current.stack
}

// State returns the lifecycle state. Safe to call from any goroutine.
func (s *Scheduler) State() State {
	if s == nil {
		return StateUninitialized
	}
	return s.state.Load()
}

// Metrics returns a snapshot of runtime metrics, which are all zero unless
// enabled with WithMetrics. Safe to call from any goroutine.
func (s *Scheduler) Metrics() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}
