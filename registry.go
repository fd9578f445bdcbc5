// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"container/list"
)

// runQueue is the FIFO of ready threads. The head is the running thread.
type runQueue struct {
	l list.List
}

func (q *runQueue) Len() int { return q.l.Len() }

// Front returns the head, or nil if empty.
func (q *runQueue) Front() *thread {
	if e := q.l.Front(); e != nil {
		return e.Value.(*thread)
	}
	return nil
}

func (q *runQueue) PushBack(t *thread) {
	if t.elem != nil {
		panic(`uthreads: thread already queued`)
	}
	t.elem = q.l.PushBack(t)
}

func (q *runQueue) Remove(t *thread) {
	q.l.Remove(t.elem)
	t.elem = nil
}

// Rotate moves the head to the tail.
func (q *runQueue) Rotate() {
	if e := q.l.Front(); e != nil {
		q.l.MoveToBack(e)
	}
}

// IDs returns the ids in queue order.
func (q *runQueue) IDs() []int {
	ids := make([]int, 0, q.l.Len())
	for e := q.l.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*thread).id)
	}
	return ids
}

// blockedSet holds threads that are blocked, sleeping, or both, in the order
// they were added.
type blockedSet struct {
	l list.List
}

func (b *blockedSet) Len() int { return b.l.Len() }

func (b *blockedSet) Add(t *thread) {
	if t.elem != nil {
		panic(`uthreads: thread already queued`)
	}
	t.elem = b.l.PushBack(t)
}

func (b *blockedSet) Remove(t *thread) {
	b.l.Remove(t.elem)
	t.elem = nil
}

// Each calls fn for each thread in insertion order. fn may remove the thread
// it was called with.
func (b *blockedSet) Each(fn func(t *thread)) {
	for e := b.l.Front(); e != nil; {
		next := e.Next()
		fn(e.Value.(*thread))
		e = next
	}
}
