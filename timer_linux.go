// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux

package uthreads

import (
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// virtualTimerOwned guards the process-wide ITIMER_VIRTUAL.
var virtualTimerOwned atomic.Bool

// virtualTimer is a Timer measuring process virtual (user CPU) time, using
// ITIMER_VIRTUAL, with expiry delivered as SIGVTALRM.
type virtualTimer struct {
	signals chan os.Signal
	stopped atomic.Bool
}

func newDefaultTimer(wallClock bool) (Timer, error) {
	if wallClock {
		return newWallClockTimer(), nil
	}
	return newVirtualTimer()
}

func newVirtualTimer() (*virtualTimer, error) {
	if !virtualTimerOwned.CompareAndSwap(false, true) {
		return nil, ErrTimerInUse
	}
	x := &virtualTimer{
		// buffer of 1 coalesces expiries, like a pending signal
		signals: make(chan os.Signal, 1),
	}
	signal.Notify(x.signals, unix.SIGVTALRM)
	return x, nil
}

func (x *virtualTimer) Arm(d time.Duration) error {
	x.drain()
	_, err := unix.Setitimer(unix.ItimerVirtual, unix.Itimerval{
		Value: unix.NsecToTimeval(d.Nanoseconds()),
	})
	return err
}

// Poll consumes a pending expiry. Signals are forwarded asynchronously, so
// one raised by the previous arming may arrive after Arm drained the
// channel: it is discarded if the current one-shot has not yet fired.
func (x *virtualTimer) Poll() bool {
	select {
	case <-x.signals:
	default:
		return false
	}
	v, err := unix.Getitimer(unix.ItimerVirtual)
	return err != nil || (v.Value.Sec == 0 && v.Value.Usec == 0)
}

func (x *virtualTimer) Stop() error {
	if !x.stopped.CompareAndSwap(false, true) {
		return nil
	}
	_, err := unix.Setitimer(unix.ItimerVirtual, unix.Itimerval{})
	signal.Stop(x.signals)
	x.drain()
	virtualTimerOwned.Store(false)
	return err
}

func (x *virtualTimer) drain() {
	for {
		select {
		case <-x.signals:
		default:
			return
		}
	}
}
