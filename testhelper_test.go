package uthreads

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// manualTimer is a Timer that only expires when told to.
type manualTimer struct {
	mu      sync.Mutex
	armErr  error
	stopErr error
	armed   []time.Duration
	stopped int
	pending atomic.Bool
}

// Expire latches an expiry, to be delivered at the next safe point.
func (x *manualTimer) Expire() { x.pending.Store(true) }

func (x *manualTimer) Arm(d time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.armErr != nil {
		return x.armErr
	}
	x.pending.Store(false)
	x.armed = append(x.armed, d)
	return nil
}

func (x *manualTimer) Poll() bool { return x.pending.Swap(false) }

func (x *manualTimer) Stop() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.stopped++
	x.pending.Store(false)
	return x.stopErr
}

func (x *manualTimer) Arms() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.armed)
}

func (x *manualTimer) SetArmErr(err error) {
	x.mu.Lock()
	x.armErr = err
	x.mu.Unlock()
}

// exitRecorder is an exit hook that returns, recording each status.
type exitRecorder struct {
	mu    sync.Mutex
	codes []int
}

func (x *exitRecorder) Exit(code int) {
	x.mu.Lock()
	x.codes = append(x.codes, code)
	x.mu.Unlock()
}

func (x *exitRecorder) Codes() []int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]int(nil), x.codes...)
}

// trace records events from threads. Only the baton holder appends, so the
// hand-off channels order every access.
type trace struct {
	events []string
}

func (x *trace) add(event string) { x.events = append(x.events, event) }

type testScheduler struct {
	*Scheduler
	timer *manualTimer
	exits *exitRecorder
}

// newTestScheduler creates a Scheduler driven by a manual timer, with an exit
// hook that returns. It is terminated on cleanup, if still running.
func newTestScheduler(t *testing.T, opts ...Option) *testScheduler {
	t.Helper()
	timer := new(manualTimer)
	exits := new(exitRecorder)
	s, err := Init(1000, append([]Option{
		WithTimer(timer),
		WithExitFunc(exits.Exit),
		WithLogger(nil),
	}, opts...)...)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() {
		if s.State() == StateRunning {
			_ = s.Terminate(0)
		}
	})
	return &testScheduler{Scheduler: s, timer: timer, exits: exits}
}

// spawn spawns entry, failing the test on error.
func (x *testScheduler) spawn(t *testing.T, entry func()) int {
	t.Helper()
	id, err := x.Spawn(entry)
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}
	return id
}

// yieldN yields the calling thread n times.
func (x *testScheduler) yieldN(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := x.Yield(); err != nil {
			t.Fatalf("yield failed: %v", err)
		}
	}
}

// spinner returns an entry function that yields forever, counting each time
// it is dispatched.
func spinner(s *Scheduler, counter *int) func() {
	return func() {
		for {
			*counter++
			_ = s.Yield()
		}
	}
}
