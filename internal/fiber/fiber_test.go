package fiber

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal(`timed out waiting for fiber to unwind`)
	}
}

func TestFiber_Switch_pingPong(t *testing.T) {
	main := Current()
	var trace []string
	var a *Fiber
	a = New(func() {
		trace = append(trace, `a1`)
		a.Switch(main)
		trace = append(trace, `a2`)
		a.Exit(main)
		t.Error(`exit returned`)
	}, nil)

	require.False(t, a.Started())
	main.Switch(a)
	trace = append(trace, `m1`)
	require.True(t, a.Started())
	main.Switch(a)
	trace = append(trace, `m2`)

	waitClosed(t, a.Done())
	assert.Equal(t, []string{`a1`, `m1`, `a2`, `m2`}, trace)
}

func TestFiber_Switch_self(t *testing.T) {
	main := Current()
	done := make(chan struct{})
	go func() {
		defer close(done)
		main.Switch(main)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(`switch to self blocked`)
	}
}

func TestFiber_Exit_runsDeferredBeforeRestore(t *testing.T) {
	main := Current()
	var trace []string
	var a *Fiber
	a = New(func() {
		defer func() { trace = append(trace, `deferred`) }()
		a.Exit(main)
	}, nil)
	main.Switch(a)
	trace = append(trace, `main`)
	assert.Equal(t, []string{`deferred`, `main`}, trace)
}

func TestFiber_orphanHook(t *testing.T) {
	main := Current()
	var orphaned int
	var a *Fiber
	a = New(func() {}, func() {
		orphaned++
		a.Exit(main)
	})
	main.Switch(a)
	assert.Equal(t, 1, orphaned)
	waitClosed(t, a.Done())
}

func TestFiber_Cancel_parked(t *testing.T) {
	main := Current()
	var unwound bool
	var a *Fiber
	a = New(func() {
		defer func() { unwound = true }()
		a.Switch(main)
		t.Error(`cancelled fiber resumed`)
	}, func() { t.Error(`orphan hook called for cancelled fiber`) })
	main.Switch(a)
	a.Cancel()
	assert.True(t, unwound)
	waitClosed(t, a.Done())
	// idempotent
	a.Cancel()
}

func TestFiber_Cancel_neverStarted(t *testing.T) {
	a := New(func() { t.Error(`cancelled fiber ran`) }, nil)
	a.Cancel()
	waitClosed(t, a.Done())
	assert.Panics(t, func() { a.restore() })
}

func TestFiber_Current_cannotExitOrCancel(t *testing.T) {
	main := Current()
	assert.Nil(t, main.Done())
	assert.Panics(t, func() { main.Cancel() })
	assert.Panics(t, func() { main.Exit(main) })
}

func TestNew_nilEntry(t *testing.T) {
	assert.Panics(t, func() { New(nil, nil) })
}
