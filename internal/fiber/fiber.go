// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package fiber implements resumable execution points on top of goroutines.
//
// A Fiber is a goroutine that only runs while it holds the "baton". Passing
// the baton is a context switch: the target fiber is restored (its binary
// semaphore is posted, or its goroutine started), and the switching fiber
// captures its own execution point by parking on its semaphore. At most one
// fiber in a set created from a single Current fiber is ever unparked.
//
// All methods must be called by the goroutine that currently holds the baton,
// with the exception of the receiver's own park/exit paths. Fields are only
// ever touched by the baton holder, and every hand-off goes through a channel
// operation, so no additional synchronisation is required.
package fiber

import (
	"runtime"
)

// Fiber models a resumable execution point.
type Fiber struct {
	entry     func()
	orphan    func()
	wake      chan bool
	done      chan struct{}
	next      *Fiber
	started   bool
	cancelled bool
	exiting   bool
}

// Current returns a fiber representing the calling goroutine, which is
// treated as already running. It has no entry function, and may neither be
// cancelled nor exited.
func Current() *Fiber {
	return &Fiber{
		wake:    make(chan bool, 1),
		started: true,
	}
}

// New primes a fiber that will begin execution at entry, on its own
// goroutine, the first time it is restored. No goroutine exists until then.
//
// If the goroutine unwinds without calling Exit (entry returned, panicked, or
// called runtime.Goexit), orphan is called on that goroutine, and is expected
// to call Exit to nominate the fiber to restore. Nil orphan hooks are
// permitted, but leave the baton with nobody.
func New(entry func(), orphan func()) *Fiber {
	if entry == nil {
		panic(`fiber: nil entry`)
	}
	return &Fiber{
		entry:  entry,
		orphan: orphan,
		wake:   make(chan bool, 1),
		done:   make(chan struct{}),
	}
}

// Started reports whether the fiber has been restored at least once.
func (f *Fiber) Started() bool { return f.started }

// Done returns a channel that is closed once the fiber's goroutine has fully
// unwound. It is nil for fibers created by Current.
func (f *Fiber) Done() <-chan struct{} { return f.done }

// Switch restores to, then parks the receiver, which must be the running
// fiber. It returns only when a later Switch or Exit restores the receiver.
// If the receiver is cancelled while parked, its goroutine exits instead.
//
// Switching to the receiver itself is a no-op.
func (f *Fiber) Switch(to *Fiber) {
	if to == f {
		return
	}
	to.restore()
	f.park()
}

// Exit ends the receiver, which must be the running fiber, restoring to once
// the receiver's goroutine has run its deferred calls. It does not return,
// unless called from the orphan hook, in which case unwinding is already in
// progress.
func (f *Fiber) Exit(to *Fiber) {
	if f.done == nil {
		panic(`fiber: exit of a fiber created by Current`)
	}
	f.next = to
	if f.exiting {
		return
	}
	runtime.Goexit()
}

// Cancel destroys a fiber that is not running. A fiber that was never
// restored is simply marked as dead. A parked fiber is woken with a cancel
// signal, and Cancel blocks until its goroutine has unwound.
func (f *Fiber) Cancel() {
	if f.done == nil {
		panic(`fiber: cancel of a fiber created by Current`)
	}
	if f.cancelled {
		return
	}
	if !f.started {
		f.started = true
		f.cancelled = true
		close(f.done)
		return
	}
	f.wake <- false
	<-f.done
}

func (f *Fiber) restore() {
	if f.cancelled {
		panic(`fiber: restore of a cancelled fiber`)
	}
	if !f.started {
		f.started = true
		go f.run()
		return
	}
	f.wake <- true
}

func (f *Fiber) park() {
	if <-f.wake {
		return
	}
	f.cancelled = true
	runtime.Goexit()
}

func (f *Fiber) run() {
	defer f.finish()
	f.entry()
}

func (f *Fiber) finish() {
	f.exiting = true
	if f.next == nil && !f.cancelled && f.orphan != nil {
		f.orphan()
	}
	next := f.next
	close(f.done)
	if next != nil {
		next.restore()
	}
}
