// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package tid implements allocation of small integer thread identifiers,
// always handing out the smallest identifier not currently in use.
package tid

import (
	"math/bits"
)

// Pool tracks which identifiers in [0, Cap()) are in use.
//
// Identifier 0 is reserved (it belongs to the thread that created the pool)
// and is marked in use from construction. It can never be released.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	words []uint64 // set bit = free
	size  int
	inUse int
}

// New returns a Pool covering [0, size), with id 0 already in use.
// Panics if size < 1.
func New(size int) *Pool {
	if size < 1 {
		panic(`tid: pool size must be positive`)
	}
	p := &Pool{
		words: make([]uint64, (size+63)/64),
		size:  size,
		inUse: 1,
	}
	for i := 1; i < size; i++ {
		p.words[i/64] |= 1 << (uint(i) % 64)
	}
	return p
}

// Acquire marks the smallest free id as in use, and returns it. The boolean
// result is false if every id is in use.
func (p *Pool) Acquire() (int, bool) {
	for i, w := range p.words {
		if w == 0 {
			continue
		}
		bit := bits.TrailingZeros64(w)
		p.words[i] &^= 1 << uint(bit)
		p.inUse++
		return i*64 + bit, true
	}
	return 0, false
}

// Release returns id to the pool. It reports false (and does nothing) if id
// is out of range, reserved, or already free.
func (p *Pool) Release(id int) bool {
	if id <= 0 || id >= p.size || !p.InUse(id) {
		return false
	}
	p.words[id/64] |= 1 << (uint(id) % 64)
	p.inUse--
	return true
}

// InUse reports whether id is currently allocated. Out of range ids are never
// in use.
func (p *Pool) InUse(id int) bool {
	if id < 0 || id >= p.size {
		return false
	}
	return p.words[id/64]&(1<<(uint(id)%64)) == 0
}

// Len returns the number of ids in use, including the reserved id 0.
func (p *Pool) Len() int { return p.inUse }

// Cap returns the size of the id space.
func (p *Pool) Cap() int { return p.size }
