// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"fmt"
	"os"
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// DefaultMaxThreads is the default ceiling on live threads, including
	// the main thread.
	DefaultMaxThreads = 100

	// DefaultStackSize is the default size, in bytes, of each spawned
	// thread's stack buffer.
	DefaultStackSize = 4096
)

// schedulerOptions holds configuration options for Init.
type schedulerOptions struct {
	logger         *logiface.Logger[logiface.Event]
	timer          Timer
	exit           func(code int)
	diagnosticRate map[time.Duration]int
	maxThreads     int
	stackSize      int
	wallClock      bool
	metricsEnabled bool
}

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithMaxThreads sets the maximum number of concurrently live threads,
// including the main thread. Must be at least 1.
func WithMaxThreads(n int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if n < 1 {
			return fmt.Errorf("%w: max threads must be at least 1, got %d", ErrInvalidOption, n)
		}
		opts.maxThreads = n
		return nil
	}}
}

// WithStackSize sets the size, in bytes, of the stack buffer allocated for
// each spawned thread. Must be positive.
func WithStackSize(size int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if size <= 0 {
			return fmt.Errorf("%w: stack size must be positive, got %d", ErrInvalidOption, size)
		}
		opts.stackSize = size
		return nil
	}}
}

// WithLogger sets the logger used for diagnostics. A nil logger disables
// logging. Defaults to a JSON logger writing warnings and above to stderr.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		if logger == nil {
			opts.logger = disabledLogger
		}
		return nil
	}}
}

// WithTimer sets the preemption timer. The scheduler takes ownership, and
// will Stop it on Terminate(0).
func WithTimer(timer Timer) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if timer == nil {
			return fmt.Errorf("%w: nil timer", ErrInvalidOption)
		}
		opts.timer = timer
		return nil
	}}
}

// WithWallClockTimer selects a wall-clock preemption timer, instead of the
// default process virtual-time timer. Ignored if WithTimer is also provided.
func WithWallClockTimer() Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.wallClock = true
		return nil
	}}
}

// WithExitFunc sets the hook used to end the process, on Terminate(0)
// (status 0) or a system failure (status 1). Defaults to os.Exit.
func WithExitFunc(exit func(code int)) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if exit == nil {
			return fmt.Errorf("%w: nil exit func", ErrInvalidOption)
		}
		opts.exit = exit
		return nil
	}}
}

// WithDiagnosticRateLimit limits usage-error diagnostics, per operation, to
// the given sliding window rates (e.g. {time.Second: 5}). Errors are still
// returned to callers.
func WithDiagnosticRateLimit(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		for window, count := range rates {
			if window <= 0 || count <= 0 {
				return fmt.Errorf("%w: invalid diagnostic rate %d/%s", ErrInvalidOption, count, window)
			}
		}
		opts.diagnosticRate = rates
		return nil
	}}
}

// WithMetrics enables runtime metrics collection, see Scheduler.Metrics.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to schedulerOptions.
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		maxThreads: DefaultMaxThreads,
		stackSize:  DefaultStackSize,
		exit:       os.Exit,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = newDefaultLogger()
	}
	return cfg, nil
}
