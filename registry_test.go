package uthreads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunQueue(t *testing.T) {
	var q runQueue
	assert.Nil(t, q.Front())
	q.Rotate()

	threads := []*thread{{id: 0}, {id: 1}, {id: 2}}
	for _, th := range threads {
		q.PushBack(th)
	}
	assert.Equal(t, 3, q.Len())
	assert.Same(t, threads[0], q.Front())

	q.Rotate()
	assert.Equal(t, []int{1, 2, 0}, q.IDs())

	q.Remove(threads[2])
	assert.Nil(t, threads[2].elem)
	assert.Equal(t, []int{1, 0}, q.IDs())

	q.PushBack(threads[2])
	assert.Equal(t, []int{1, 0, 2}, q.IDs())

	assert.Panics(t, func() { q.PushBack(threads[0]) })
}

func TestBlockedSet_Each(t *testing.T) {
	var b blockedSet
	threads := []*thread{{id: 3}, {id: 1}, {id: 2}}
	for _, th := range threads {
		b.Add(th)
	}

	var order []int
	b.Each(func(th *thread) {
		order = append(order, th.id)
		if th.id != 2 {
			b.Remove(th)
		}
	})
	assert.Equal(t, []int{3, 1, 2}, order)
	assert.Equal(t, 1, b.Len())

	var ready runQueue
	assert.Panics(t, func() { ready.PushBack(threads[2]) })
}

func TestThread_threadState(t *testing.T) {
	assert.Equal(t, ThreadReady, (&thread{}).threadState())
	assert.Equal(t, ThreadBlocked, (&thread{blocked: true}).threadState())
	assert.Equal(t, ThreadSleeping, (&thread{sleeping: true}).threadState())
	assert.Equal(t, ThreadBlockedSleeping, (&thread{blocked: true, sleeping: true}).threadState())
	assert.True(t, (&thread{}).ready())
	assert.False(t, (&thread{sleeping: true}).ready())
}
