// Package connstate tracks the liveness of a backend connection that is
// established in the background and observed by callers through a flag.
package connstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNotReady is returned by Wait when the backend went down without
// reporting a cause.
var ErrNotReady = errors.New("connstate: connection not established")

// State is the lifecycle position of a backend connection.
type State int32

const (
	StatePending State = iota
	StateConnected
	// StateDisconnected is entered by recovering trackers on an error event.
	// A later connect event moves the tracker back to StateConnected.
	StateDisconnected
	// StateFailed is the terminal failure of a one-shot tracker.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tracker holds the connection state of one backend session.
//
// A one-shot tracker settles exactly once: the first MarkConnected or MarkDown
// wins and every later mark is ignored. A recovering tracker follows every
// event, so it can cycle between connected and disconnected for as long as the
// backend library keeps reporting.
type Tracker struct {
	state    atomic.Int32
	terminal bool

	mu      sync.Mutex
	lastErr error

	ready     chan struct{}
	readyOnce sync.Once
}

// NewOneShot returns a tracker in StatePending whose first outcome is final.
func NewOneShot() *Tracker {
	return &Tracker{
		terminal: true,
		ready:    make(chan struct{}),
	}
}

// NewRecovering returns a tracker that follows connect and error events for
// its whole lifetime. When optimistic is true it reports alive before the
// first event arrives.
func NewRecovering(optimistic bool) *Tracker {
	t := &Tracker{ready: make(chan struct{})}
	if optimistic {
		t.state.Store(int32(StateConnected))
	}
	return t
}

// State returns the current state.
func (t *Tracker) State() State {
	return State(t.state.Load())
}

// Alive reports whether the backend is currently usable.
func (t *Tracker) Alive() bool {
	return t.State() == StateConnected
}

// MarkConnected records a successful connect. It reports whether the state
// changed, so repeated identical events can be told apart from transitions.
func (t *Tracker) MarkConnected() bool {
	changed := t.transition(StateConnected)
	if changed || !t.terminal {
		t.setErr(nil)
	}
	t.settle()
	return changed
}

// MarkDown records a failed connect or a dropped session. One-shot trackers
// move to StateFailed, recovering trackers to StateDisconnected.
func (t *Tracker) MarkDown(err error) bool {
	if err == nil {
		err = ErrNotReady
	}
	target := StateDisconnected
	if t.terminal {
		target = StateFailed
	}
	changed := t.transition(target)
	if changed || !t.terminal {
		t.setErr(err)
	}
	t.settle()
	return changed
}

// Ready is closed once the first connect attempt has an outcome.
func (t *Tracker) Ready() <-chan struct{} {
	return t.ready
}

// Wait blocks until the first outcome is known or ctx is done. It returns nil
// when the backend is alive at that point and the most recent failure
// otherwise.
func (t *Tracker) Wait(ctx context.Context) error {
	select {
	case <-t.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	if t.Alive() {
		return nil
	}
	return t.Err()
}

// Err returns the most recent failure, or nil while connected or pending.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastErr == nil && t.State() != StateConnected && t.State() != StatePending {
		return ErrNotReady
	}
	return t.lastErr
}

func (t *Tracker) transition(to State) bool {
	if t.terminal {
		return t.state.CompareAndSwap(int32(StatePending), int32(to))
	}
	return State(t.state.Swap(int32(to))) != to
}

func (t *Tracker) setErr(err error) {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
}

func (t *Tracker) settle() {
	t.readyOnce.Do(func() { close(t.ready) })
}
