// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package uthreads

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrInvalidQuantum is returned by Init when the quantum is not positive.
	ErrInvalidQuantum = errors.New("uthreads: quantum must be positive")

	// ErrNilEntry is returned by Spawn when the entry function is nil.
	ErrNilEntry = errors.New("uthreads: entry function is nil")

	// ErrCapacity is returned by Spawn when the live thread count is at the
	// configured ceiling.
	ErrCapacity = errors.New("uthreads: reached maximum number of threads")

	// ErrInvalidID is returned when a thread id is out of range, or not in use.
	ErrInvalidID = errors.New("uthreads: invalid thread id")

	// ErrMainThread is returned when an operation is not permitted for the
	// main thread (id 0), e.g. blocking or sleeping it.
	ErrMainThread = errors.New("uthreads: operation not permitted for the main thread")

	// ErrTerminated is returned when operations are attempted on a scheduler
	// that has been terminated.
	ErrTerminated = errors.New("uthreads: scheduler has been terminated")

	// ErrNotInitialized is returned when operations are attempted on a
	// Scheduler that was not created by Init.
	ErrNotInitialized = errors.New("uthreads: scheduler is not initialized")

	// ErrTimerInUse is returned by Init when the process-wide virtual timer is
	// already owned by another live scheduler.
	ErrTimerInUse = errors.New("uthreads: virtual timer is already in use")

	// ErrThreadExiting is returned when a thread that is being terminated by
	// another calls the Scheduler from a deferred function.
	ErrThreadExiting = errors.New("uthreads: thread is being terminated")

	// ErrInvalidOption is returned by Init when an option is invalid.
	ErrInvalidOption = errors.New("uthreads: invalid option")
)

// UsageError indicates the caller violated a precondition. The scheduler
// state is left unchanged, and the caller may continue.
type UsageError struct {
	// Err is one of the sentinel errors of this package.
	Err error
	// Op is the name of the operation, e.g. "block".
	Op string
	// ID is the thread id the operation targeted, or -1 if not applicable.
	ID int
}

// Error implements the error interface, using the "thread library error"
// prefix for diagnostic output.
func (e *UsageError) Error() string {
	if e.ID >= 0 {
		return fmt.Sprintf("thread library error: %s: tid %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("thread library error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying sentinel for use with [errors.Is].
func (e *UsageError) Unwrap() error {
	return e.Err
}

// SystemError indicates an underlying OS primitive failed. It is never
// returned: the exit hook is called with status 1, and if the hook returns,
// the scheduler panics with the *SystemError.
type SystemError struct {
	Err error
	Op  string
}

// Error implements the error interface.
func (e *SystemError) Error() string {
	return fmt.Sprintf("system error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *SystemError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking entry function. The
// thread is terminated, as if it had terminated itself.
type PanicError struct {
	Value any
	ID    int
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("uthreads: thread %d panicked: %v", e.ID, e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As].
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
