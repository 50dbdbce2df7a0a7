package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/quatton/filesmanager/pkg/connstate"
	"github.com/quatton/filesmanager/pkg/fmlog"
)

// eventStore is a MemoryStore that lets tests fire connection events and
// inject failures.
type eventStore struct {
	*MemoryStore

	mu        sync.Mutex
	onConnect []func()
	onError   []func(error)
	fail      error
	pingErr   error
}

func newEventStore() *eventStore {
	return &eventStore{MemoryStore: NewMemoryStore()}
}

func (s *eventStore) OnConnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, fn)
}

func (s *eventStore) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, fn)
}

func (s *eventStore) connect() {
	s.mu.Lock()
	fns := s.onConnect
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *eventStore) drop(err error) {
	s.mu.Lock()
	fns := s.onError
	s.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (s *eventStore) Ping(ctx context.Context) error {
	if s.pingErr != nil {
		return s.pingErr
	}
	return s.MemoryStore.Ping(ctx)
}

func (s *eventStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *eventStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.fail != nil {
		return s.fail
	}
	return s.MemoryStore.Set(ctx, key, value, ttl)
}

func (s *eventStore) Delete(ctx context.Context, key string) error {
	if s.fail != nil {
		return s.fail
	}
	return s.MemoryStore.Delete(ctx, key)
}

func waitReady(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("client never settled")
	}
}

func TestClient_SetThenGet(t *testing.T) {
	c := NewClient(NewMemoryStore(), WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	if err := c.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	c.Set(ctx, "a", "1", 60*time.Second)
	got, ok := c.Get(ctx, "a")
	if !ok || got != "1" {
		t.Errorf("Expected (1, true), got (%q, %v)", got, ok)
	}
}

func TestClient_DelThenGet(t *testing.T) {
	c := NewClient(NewMemoryStore(), WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "b", "x", 60*time.Second)
	c.Del(ctx, "b")

	if got, ok := c.Get(ctx, "b"); ok {
		t.Errorf("Expected miss after Del, got %q", got)
	}
}

func TestClient_SetEncodesValues(t *testing.T) {
	c := NewClient(NewMemoryStore(), WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "n", 42, time.Minute)
	c.Set(ctx, "b", true, time.Minute)
	c.Set(ctx, "raw", []byte("bytes"), time.Minute)

	for key, want := range map[string]string{"n": "42", "b": "true", "raw": "bytes"} {
		if got, _ := c.Get(ctx, key); got != want {
			t.Errorf("Get(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestClient_SetRejectsNonPositiveTTL(t *testing.T) {
	c := NewClient(NewMemoryStore(), WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", "v", 0)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Set with zero ttl should not store anything")
	}
}

func TestClient_BackendFailuresDegrade(t *testing.T) {
	store := newEventStore()
	c := NewClient(store, WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()
	waitReady(t, c)

	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.fail = errors.New("i/o timeout")

	if got, ok := c.Get(ctx, "k"); ok || got != "" {
		t.Errorf("Expected (\"\", false) on failure, got (%q, %v)", got, ok)
	}
	c.Set(ctx, "k", "other", time.Minute)
	c.Del(ctx, "k")

	store.fail = nil
	if got, _ := c.Get(ctx, "k"); got != "v" {
		t.Errorf("failed writes must not change the store, got %q", got)
	}
}

func TestClient_LivenessFollowsEvents(t *testing.T) {
	store := newEventStore()
	c := NewClient(store, WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	waitReady(t, c)

	if !c.IsAlive() {
		t.Fatal("Expected alive after a successful probe")
	}

	store.drop(errors.New("connection reset"))
	store.drop(errors.New("connection reset"))
	if c.IsAlive() {
		t.Fatal("Expected not alive after error events")
	}
	if c.State() != connstate.StateDisconnected {
		t.Errorf("Expected disconnected, got %s", c.State())
	}

	store.connect()
	store.connect()
	if !c.IsAlive() {
		t.Fatal("Expected alive after reconnect")
	}
}

func TestClient_PendingUntilProbe(t *testing.T) {
	store := newEventStore()
	store.pingErr = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	c := NewClient(store, WithLogger(fmlog.NewDiscard()))
	defer c.Close()

	if err := c.Wait(context.Background()); err == nil {
		t.Fatal("Expected Wait to report the probe failure")
	}
	if c.IsAlive() {
		t.Error("Expected not alive after failed probe")
	}

	store.connect()
	if !c.IsAlive() {
		t.Error("Expected alive after a later connect event")
	}
	if err := c.Wait(context.Background()); err != nil {
		t.Errorf("Wait after recovery returned %v", err)
	}
}

func TestClient_OptimisticStart(t *testing.T) {
	store := newEventStore()
	store.pingErr = errors.New("refused")
	c := NewClient(store, WithLogger(fmlog.NewDiscard()), WithOptimisticStart(), WithProbeTimeout(time.Second))
	defer c.Close()

	waitReady(t, c)
	if c.IsAlive() {
		t.Error("Expected the failed probe to clear the optimistic flag")
	}
}

func TestClient_RedisRecovers(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(RedisConfig{Addr: mr.Addr(), DialTimeout: 200 * time.Millisecond})
	c := NewClient(store, WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	if err := c.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	c.Set(ctx, "a", "1", 60*time.Second)
	if got, ok := c.Get(ctx, "a"); !ok || got != "1" {
		t.Fatalf("Expected (1, true), got (%q, %v)", got, ok)
	}

	mr.Close()
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("Expected a miss with the server down")
	}
	if c.IsAlive() {
		t.Fatal("Expected not alive with the server down")
	}

	if err := mr.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if got, ok := c.Get(ctx, "a"); !ok || got != "1" {
		t.Errorf("Expected (1, true) after restart, got (%q, %v)", got, ok)
	}
	if !c.IsAlive() {
		t.Error("Expected alive after the server came back")
	}
}

func TestClient_RedisUnreachable(t *testing.T) {
	store := NewRedisStore(RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	c := NewClient(store, WithLogger(fmlog.NewDiscard()), WithProbeTimeout(2*time.Second))
	defer c.Close()
	ctx := context.Background()

	if err := c.Wait(ctx); err == nil {
		t.Fatal("Expected Wait to fail against a closed port")
	}
	if c.IsAlive() {
		t.Error("Expected not alive")
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("Expected a miss")
	}
	c.Set(ctx, "a", "1", time.Minute)
	c.Del(ctx, "a")
}

func TestClient_CallerDeadlineKeepsAlive(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(RedisConfig{Addr: mr.Addr(), DialTimeout: 200 * time.Millisecond})
	c := NewClient(store, WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	if err := c.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	c.Set(ctx, "a", "1", time.Minute)

	expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
	defer cancel()
	if _, ok := c.Get(expired, "a"); ok {
		t.Fatal("Expected a miss with an expired context")
	}
	if !c.IsAlive() {
		t.Fatal("an expired caller context must not mark the store down")
	}

	for i := 0; i < 5; i++ {
		if got, ok := c.Get(ctx, "a"); !ok || got != "1" {
			t.Fatalf("Get %d: expected (1, true), got (%q, %v)", i, got, ok)
		}
		if !c.IsAlive() {
			t.Fatalf("Get %d: expected alive while the server answers", i)
		}
	}
}

func TestClient_ReplyRestoresLiveness(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(RedisConfig{Addr: mr.Addr(), DialTimeout: 200 * time.Millisecond})
	c := NewClient(store, WithLogger(fmlog.NewDiscard()))
	defer c.Close()
	ctx := context.Background()

	if err := c.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	// A stale error event while the pooled connection stays healthy.
	c.handleError(errors.New("read: connection reset by peer"))
	if c.IsAlive() {
		t.Fatal("Expected not alive after an error event")
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("Expected a miss for a missing key")
	}
	if !c.IsAlive() {
		t.Error("Expected a server reply on the pooled connection to restore liveness")
	}
}
