package uthreads

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageError(t *testing.T) {
	err := &UsageError{Err: ErrInvalidID, Op: opBlock, ID: 7}
	assert.Equal(t, "thread library error: block: tid 7: uthreads: invalid thread id", err.Error())
	assert.ErrorIs(t, err, ErrInvalidID)

	err = &UsageError{Err: ErrNilEntry, Op: opSpawn, ID: -1}
	assert.Equal(t, "thread library error: spawn: uthreads: entry function is nil", err.Error())
}

func TestSystemError(t *testing.T) {
	cause := errors.New("EINVAL")
	err := &SystemError{Err: cause, Op: "arm timer"}
	assert.Equal(t, "system error: arm timer: EINVAL", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestPanicError(t *testing.T) {
	cause := errors.New("boom")
	err := &PanicError{Value: cause, ID: 3}
	assert.Equal(t, "uthreads: thread 3 panicked: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	err = &PanicError{Value: 42, ID: 1}
	assert.Nil(t, err.Unwrap())
}
