// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"container/list"

	"github.com/joeycumines/go-uthreads/internal/fiber"
)

// thread is a thread control block.
type thread struct {
	fiber *fiber.Fiber
	// elem is the thread's node in either the run queue or the blocked set
	elem  *list.Element
	stack []byte
	id    int
	// quantums is the number of quanta the thread was dispatched for
	quantums int
	// wakeAt is the total quantum count at which a sleeper may be woken
	wakeAt int
	// mask is the guard depth saved when the thread last switched out
	mask     int
	blocked  bool
	sleeping bool
	// dead is set once the thread is removed from the scheduler, while its
	// goroutine may still be unwinding
	dead bool
}

func (t *thread) ready() bool {
	return !t.blocked && !t.sleeping
}

func (t *thread) threadState() ThreadState {
	switch {
	case t.blocked && t.sleeping:
		return ThreadBlockedSleeping
	case t.blocked:
		return ThreadBlocked
	case t.sleeping:
		return ThreadSleeping
	default:
		return ThreadReady
	}
}
