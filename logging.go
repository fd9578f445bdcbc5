// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"os"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Log categories, set as the "category" field.
const (
	categorySched  = "sched"
	categoryTimer  = "timer"
	categoryUsage  = "usage"
	categorySystem = "system"
)

// disabledLogger has no writer, so every event is dropped.
var disabledLogger = logiface.New[logiface.Event]()

// newDefaultLogger returns a JSON logger writing warnings and above to
// stderr, the diagnostic channel of the library.
func newDefaultLogger() *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
		stumpy.L.WithLevel(logiface.LevelWarning),
	).Logger()
}

// diagnostics implements the two diagnostic output channels: usage errors
// (logged, then returned) and system failures (logged, then fatal).
type diagnostics struct {
	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
}

func newDiagnostics(logger *logiface.Logger[logiface.Event], rates map[time.Duration]int) *diagnostics {
	d := &diagnostics{logger: logger}
	if len(rates) != 0 {
		d.limiter = catrate.NewLimiter(rates)
	}
	return d
}

func (d *diagnostics) usage(err *UsageError) {
	if d.limiter != nil {
		if _, ok := d.limiter.Allow(err.Op); !ok {
			return
		}
	}
	b := d.logger.Warning()
	if !b.Enabled() {
		return
	}
	b = b.Str("category", categoryUsage).
		Str("op", err.Op).
		Err(err.Err)
	if err.ID >= 0 {
		b = b.Int("tid", err.ID)
	}
	b.Log(err.Error())
}

func (d *diagnostics) system(err *SystemError) {
	d.logger.Crit().
		Str("category", categorySystem).
		Str("op", err.Op).
		Err(err.Err).
		Log(err.Error())
}

func (d *diagnostics) panicked(err *PanicError) {
	d.logger.Err().
		Str("category", categorySched).
		Int("tid", err.ID).
		Err(err).
		Log("thread panicked, terminating it")
}
