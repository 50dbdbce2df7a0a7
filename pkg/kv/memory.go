package kv

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with TTL support. It never loses its
// connection, so it is not an EventSource.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]memEntry
	closed bool

	now  func() time.Time
	stop chan struct{}
}

type memEntry struct {
	val       []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty store and starts its expiry sweeper.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		data: make(map[string]memEntry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go m.janitor(time.Minute)
	return m
}

func (m *MemoryStore) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.sweep()
		}
	}
}

func (m *MemoryStore) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (m *MemoryStore) entry(value []byte, ttl time.Duration) memEntry {
	e := memEntry{val: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

// Set stores a value with the given key and TTL.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.data[key] = m.entry(value, ttl)
	return nil
}

// Get retrieves a value by key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.data[key]
	if !ok || e.expired(m.now()) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.val...), nil
}

// Delete removes a key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Ping fails only after Close.
func (m *MemoryStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close stops the sweeper and drops all data.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.data = nil
	close(m.stop)
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
