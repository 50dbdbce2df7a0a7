package connstate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOneShot_ConnectIsFinal(t *testing.T) {
	tr := NewOneShot()

	if tr.Alive() {
		t.Fatal("pending tracker must not be alive")
	}
	if tr.State() != StatePending {
		t.Fatalf("expected pending, got %s", tr.State())
	}

	if !tr.MarkConnected() {
		t.Fatal("first connect should change state")
	}
	if tr.MarkDown(errors.New("boom")) {
		t.Fatal("one-shot tracker must ignore events after settling")
	}
	if !tr.Alive() {
		t.Errorf("expected alive, got %s", tr.State())
	}
	if err := tr.Wait(context.Background()); err != nil {
		t.Errorf("Wait returned %v", err)
	}
}

func TestOneShot_FailureIsFinal(t *testing.T) {
	tr := NewOneShot()
	cause := errors.New("connection refused")

	tr.MarkDown(cause)
	tr.MarkConnected()

	if tr.State() != StateFailed {
		t.Fatalf("expected failed, got %s", tr.State())
	}
	if err := tr.Wait(context.Background()); !errors.Is(err, cause) {
		t.Errorf("expected %v, got %v", cause, err)
	}
}

func TestRecovering_Cycles(t *testing.T) {
	tr := NewRecovering(false)

	if tr.Alive() {
		t.Fatal("non-optimistic tracker must start not alive")
	}

	tr.MarkDown(errors.New("reset by peer"))
	if tr.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", tr.State())
	}

	if !tr.MarkConnected() {
		t.Error("reconnect should be a transition")
	}
	if tr.MarkConnected() {
		t.Error("repeated connect should not be a transition")
	}
	if !tr.Alive() {
		t.Fatal("expected alive after reconnect")
	}
	if err := tr.Err(); err != nil {
		t.Errorf("expected no error while connected, got %v", err)
	}
}

func TestRecovering_Optimistic(t *testing.T) {
	tr := NewRecovering(true)

	if !tr.Alive() {
		t.Fatal("optimistic tracker must start alive")
	}
	select {
	case <-tr.Ready():
		t.Fatal("ready must stay open until the first event")
	default:
	}

	tr.MarkDown(nil)
	if tr.Alive() {
		t.Fatal("expected not alive after error event")
	}
	if err := tr.Wait(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestWait_ContextDone(t *testing.T) {
	tr := NewOneShot()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := tr.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
