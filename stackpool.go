// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

// stackPool recycles fixed-size stack buffers. Retained buffers are bounded
// by the thread ceiling, as no more than that many can be live at once.
type stackPool struct {
	free  [][]byte
	size  int
	limit int
	live  int
}

func newStackPool(size, limit int) *stackPool {
	return &stackPool{size: size, limit: limit}
}

// Get returns a zeroed buffer.
func (p *stackPool) Get() []byte {
	p.live++
	if n := len(p.free); n != 0 {
		b := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		clear(b)
		return b
	}
	return make([]byte, p.size)
}

// Put returns a buffer obtained from Get. Nil buffers are ignored.
func (p *stackPool) Put(b []byte) {
	if b == nil {
		return
	}
	p.live--
	if len(p.free) < p.limit {
		p.free = append(p.free, b)
	}
}

// Live returns the number of buffers obtained and not yet returned.
func (p *stackPool) Live() int { return p.live }
