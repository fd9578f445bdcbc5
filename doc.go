// Package uthreads implements user-level ("green") threads, multiplexed onto
// a single thread of control, with round-robin scheduling driven by a
// fixed time quantum.
//
// # Model
//
// Each thread is backed by a goroutine, but only the thread holding the
// baton ever runs. [Init] makes the calling goroutine thread 0, which may not
// be blocked or put to sleep. [Scheduler.Spawn] primes a thread that starts
// the first time it is dispatched.
//
// Preemption is requested by a one-shot timer, armed for one quantum each
// time a thread is dispatched, and delivered at the next safe point of the
// running thread: the return of any Scheduler method, or
// [Scheduler.Checkpoint]. Thread bodies that compute for long periods without
// calling the Scheduler should call Checkpoint within their loops. Blocking,
// sleeping, yielding and self-termination switch immediately.
//
// By default (on linux) the quantum is measured in process virtual time,
// using ITIMER_VIRTUAL, which only one Scheduler per process may own.
// [WithWallClockTimer] and [WithTimer] select alternatives.
//
// # Errors
//
// Precondition violations return a [*UsageError], after reporting it to the
// configured logger. Failures of the underlying timer are fatal: they are
// logged, then the exit hook is called with status 1.
//
// # Usage
//
//	s, err := uthreads.Init(10_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id, _ := s.Spawn(func() {
//	    for i := 0; i < 1000; i++ {
//	        work(i)
//	        s.Checkpoint()
//	    }
//	})
//	for {
//	    if _, err := s.GetQuantums(id); err != nil {
//	        break // the thread terminated
//	    }
//	    _ = s.Yield()
//	}
//	_ = s.Terminate(0) // calls os.Exit(0)
package uthreads
