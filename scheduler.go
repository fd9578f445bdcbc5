// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"errors"
	"time"

	"github.com/joeycumines/go-uthreads/internal/fiber"
	"github.com/joeycumines/go-uthreads/internal/tid"
	"github.com/joeycumines/logiface"
)

// Operation names, used by diagnostics.
const (
	opInit        = "init"
	opSpawn       = "spawn"
	opTerminate   = "terminate"
	opBlock       = "block"
	opResume      = "resume"
	opSleep       = "sleep"
	opYield       = "yield"
	opGetQuantums = "get_quantums"
	opThreadState = "thread_state"
)

// dispatchReason is the cause of a scheduling decision.
type dispatchReason uint8

const (
	// reasonPreempt is a quantum expiry: the running thread goes to the tail.
	reasonPreempt dispatchReason = iota
	// reasonYield is a voluntary rotation, identical to a preemption.
	reasonYield
	// reasonSuspend means the running thread already left the run queue.
	reasonSuspend
	// reasonExit means the running thread already terminated itself.
	reasonExit
)

func (r dispatchReason) String() string {
	switch r {
	case reasonPreempt:
		return "preempt"
	case reasonYield:
		return "yield"
	case reasonSuspend:
		return "suspend"
	case reasonExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Scheduler multiplexes threads onto a single thread of control.
//
// Only the goroutine that called Init (thread 0), and the entry functions of
// spawned threads, may call its methods. The exceptions are State and
// Metrics, which may be called from any goroutine.
type Scheduler struct {
	timer   Timer
	exit    func(code int)
	logger  *logiface.Logger[logiface.Event]
	diag    *diagnostics
	metrics *metrics
	tids    *tid.Pool
	stacks  *stackPool
	// current holds the baton, and is the head of ready unless it is
	// suspending or exiting
	current *thread
	main    *thread
	// pending is a self-terminated thread, whose stack is released at the
	// start of the next scheduling decision
	pending *thread
	// unwinding is a thread being cancelled, whose deferred functions are
	// running while the canceller holds the baton
	unwinding *thread
	threads   []*thread
	ready     runQueue
	blocked   blockedSet
	guard     guard
	quantum   time.Duration
	total     int
	state     fastState
}

// Init creates a Scheduler, making the calling goroutine thread 0, which is
// immediately running, as its first quantum.
//
// The quantum is in microseconds of (by default) process virtual time. With
// the default timer, only one Scheduler may be live per process, until it
// is terminated.
func Init(quantumUsecs int, opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, &UsageError{Err: err, Op: opInit, ID: -1}
	}

	s := &Scheduler{
		exit:    cfg.exit,
		logger:  cfg.logger,
		diag:    newDiagnostics(cfg.logger, cfg.diagnosticRate),
		tids:    tid.New(cfg.maxThreads),
		stacks:  newStackPool(cfg.stackSize, cfg.maxThreads),
		threads: make([]*thread, cfg.maxThreads),
		quantum: time.Duration(quantumUsecs) * time.Microsecond,
	}
	if cfg.metricsEnabled {
		s.metrics = &metrics{last: time.Now()}
	}

	if quantumUsecs <= 0 {
		return nil, s.usageError(opInit, -1, ErrInvalidQuantum)
	}

	s.timer = cfg.timer
	if s.timer == nil {
		s.timer, err = newDefaultTimer(cfg.wallClock)
		if err != nil {
			return nil, s.usageError(opInit, -1, err)
		}
	}

	s.main = &thread{id: 0, fiber: fiber.Current(), quantums: 1}
	s.threads[0] = s.main
	s.ready.PushBack(s.main)
	s.current = s.main
	s.total = 1
	s.state.Store(StateRunning)

	if err := s.timer.Arm(s.quantum); err != nil {
		s.fatal(opInit, err)
	}

	s.logger.Info().
		Str("category", categorySched).
		Dur("quantum", s.quantum).
		Int("max_threads", cfg.maxThreads).
		Log("scheduler initialized")

	return s, nil
}

// running returns the thread holding the baton.
func (s *Scheduler) running() *thread {
	return s.current
}

// check validates the scheduler may be used, before entering the guard.
func (s *Scheduler) check(op string, id int) error {
	if s == nil || s.state.Load() == StateUninitialized {
		return &UsageError{Err: ErrNotInitialized, Op: op, ID: id}
	}
	if s.state.Load() != StateRunning {
		return s.usageError(op, id, ErrTerminated)
	}
	if s.unwinding != nil {
		return s.usageError(op, id, ErrThreadExiting)
	}
	return nil
}

// lookup returns the live thread with the given id, or nil.
func (s *Scheduler) lookup(id int) *thread {
	if id < 0 || id >= len(s.threads) {
		return nil
	}
	return s.threads[id]
}

func (s *Scheduler) usageError(op string, id int, err error) error {
	e := &UsageError{Err: err, Op: op, ID: id}
	if s.metrics != nil {
		s.metrics.add(func(c *MetricsSnapshot) { c.UsageErrors++ })
	}
	s.diag.usage(e)
	return e
}

// fatal reports a failed system primitive, then ends the process. If the
// exit hook returns, it panics with the *SystemError.
func (s *Scheduler) fatal(op string, err error) {
	e := &SystemError{Op: op, Err: err}
	s.diag.system(e)
	s.exit(1)
	panic(e)
}

// dispatch makes a scheduling decision, then transfers the baton, if the
// running thread changed. Must be called with the guard held. It returns
// when the calling thread is next dispatched, unless the reason is
// reasonExit, in which case it never returns (except on the orphan path).
func (s *Scheduler) dispatch(reason dispatchReason) {
	prev := s.current

	s.reclaim()
	if reason == reasonExit {
		s.pending = prev
	}

	s.wakeSleepers()

	if (reason == reasonPreempt || reason == reasonYield) && s.ready.Len() > 1 {
		s.ready.Rotate()
	}

	next := s.ready.Front()
	s.total++
	next.quantums++
	s.current = next

	if err := s.timer.Arm(s.quantum); err != nil {
		s.fatal("arm timer", err)
	}

	if s.metrics != nil {
		s.metrics.dispatched(reason, time.Now())
	}

	if b := s.logger.Debug(); b.Enabled() {
		b.Str("category", categorySched).
			Str("reason", reason.String()).
			Int("from", prev.id).
			Int("to", next.id).
			Int("total", s.total).
			Log("dispatch")
	}

	if reason == reasonExit {
		s.guard.depth = next.mask
		prev.fiber.Exit(next.fiber)
		return
	}

	if next != prev {
		prev.mask = s.guard.depth
		s.guard.depth = next.mask
		prev.fiber.Switch(next.fiber)
	}
}

// reclaim releases the stack of a thread that terminated itself, which is
// guaranteed to no longer be in flight.
func (s *Scheduler) reclaim() {
	if t := s.pending; t != nil {
		s.pending = nil
		s.stacks.Put(t.stack)
		t.stack = nil
	}
}

// wakeSleepers clears the sleeping flag of every sleeper whose wake quantum
// has been reached, moving those that are not also blocked to the ready tail.
func (s *Scheduler) wakeSleepers() {
	s.blocked.Each(func(t *thread) {
		if !t.sleeping || t.wakeAt > s.total {
			return
		}
		t.sleeping = false
		if !t.blocked {
			s.blocked.Remove(t)
			s.ready.PushBack(t)
		}
	})
}

// detach removes t from the scheduler, releasing its id. Its stack is the
// caller's responsibility.
func (s *Scheduler) detach(t *thread) {
	if t.ready() {
		s.ready.Remove(t)
	} else {
		s.blocked.Remove(t)
	}
	s.threads[t.id] = nil
	s.tids.Release(t.id)
	t.dead = true
	if s.metrics != nil {
		s.metrics.add(func(c *MetricsSnapshot) { c.Terminations++ })
	}
	s.logger.Debug().
		Str("category", categorySched).
		Int("tid", t.id).
		Log("thread terminated")
}

// exitSelf terminates the running thread t, once its goroutine has nothing
// left to run. Must be called with the guard held, and does not return,
// except on the orphan path.
func (s *Scheduler) exitSelf(t *thread) {
	s.detach(t)
	s.dispatch(reasonExit)
}

// cancel terminates a thread that is not running, waiting for its goroutine
// (if any) to unwind.
func (s *Scheduler) cancel(t *thread) {
	s.detach(t)
	s.unwinding = t
	t.fiber.Cancel()
	s.unwinding = nil
	s.stacks.Put(t.stack)
	t.stack = nil
}

// shutdown implements Terminate(0).
func (s *Scheduler) shutdown(caller *thread) {
	if !s.state.TryTransition(StateRunning, StateTerminating) {
		return
	}

	for _, t := range s.threads {
		if t != nil && t != s.main && t != caller {
			s.cancel(t)
		}
	}
	s.reclaim()

	if err := s.timer.Stop(); err != nil {
		s.logger.Err().
			Str("category", categoryTimer).
			Err(err).
			Log("failed to stop timer")
	}

	s.state.Store(StateTerminated)
	s.logger.Info().
		Str("category", categorySched).
		Int("tid", caller.id).
		Int("total", s.total).
		Log("scheduler terminated")

	s.exit(0)

	if caller == s.main {
		return
	}

	// the exit hook returned, so hand the baton back to thread 0
	s.detach(caller)
	s.stacks.Put(caller.stack)
	caller.stack = nil
	s.current = s.main
	s.guard.depth = s.main.mask
	caller.fiber.Exit(s.main.fiber)
}

// bootstrap is the body of every spawned thread's goroutine. Returning from
// (or panicking in) entry terminates the thread.
func (s *Scheduler) bootstrap(t *thread, entry func()) {
	s.safeCall(t, entry)
	s.enter()
	s.exitSelf(t)
}

// orphaned is called when a spawned thread's goroutine unwound without
// terminating the thread, i.e. via runtime.Goexit, including from
// Terminate(self). The thread remains current until this point, so its
// deferred functions run as that thread.
func (s *Scheduler) orphaned(t *thread) {
	if t.dead || s.state.Load() != StateRunning {
		return
	}
	s.enter()
	s.exitSelf(t)
}

// safeCall runs fn, recovering (and logging) any panic.
func (s *Scheduler) safeCall(t *thread, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			var sysErr *SystemError
			if err, ok := r.(error); ok && errors.As(err, &sysErr) {
				panic(r)
			}
			err := &PanicError{Value: r, ID: t.id}
			if s.metrics != nil {
				s.metrics.add(func(c *MetricsSnapshot) { c.Panics++ })
			}
			s.diag.panicked(err)
		}
	}()
	fn()
}
