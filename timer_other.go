// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build !linux

package uthreads

// newDefaultTimer always uses wall-clock time, as the virtual interval timer
// is only wired up on linux.
func newDefaultTimer(bool) (Timer, error) {
	return newWallClockTimer(), nil
}
