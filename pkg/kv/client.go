package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quatton/filesmanager/pkg/connstate"
	"github.com/quatton/filesmanager/pkg/fmlog"
)

const defaultProbeTimeout = 5 * time.Second

// Client is the key-value façade. Every operation goes straight to the store
// and swallows failures: Get reports a miss, Set and Del do nothing further.
// Failures are only visible in the log and through IsAlive.
//
// Operations do not consult IsAlive first. The Redis session dials lazily and
// redials on demand, so gating on the flag would stop it from ever healing.
type Client struct {
	store Store
	state *connstate.Tracker
	log   *fmlog.Logger
}

type options struct {
	log          *fmlog.Logger
	optimistic   bool
	probeTimeout time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger failures are reported to.
func WithLogger(log *fmlog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithOptimisticStart makes IsAlive report true until the first error event,
// instead of false until the first confirmed connect.
func WithOptimisticStart() Option {
	return func(o *options) { o.optimistic = true }
}

// WithProbeTimeout bounds the background Ping issued at construction.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.probeTimeout = d
		}
	}
}

// NewClient wraps store and returns immediately. A background Ping settles the
// initial state; after that, connect and error events from an EventSource
// store keep the liveness flag current.
func NewClient(store Store, opts ...Option) *Client {
	o := options{
		log:          fmlog.NewDefault(),
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		store: store,
		state: connstate.NewRecovering(o.optimistic),
		log:   o.log.Component("kv"),
	}

	if src, ok := store.(EventSource); ok {
		src.OnError(c.handleError)
		src.OnConnect(c.handleConnect)
	}

	go c.probe(o.probeTimeout)
	return c
}

func (c *Client) probe(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		c.handleError(err)
		return
	}
	c.handleConnect()
}

func (c *Client) handleConnect() {
	if c.state.MarkConnected() {
		c.log.Info("connected to key-value store")
	}
}

func (c *Client) handleError(err error) {
	if c.state.MarkDown(err) {
		c.log.Error("key-value store unavailable", "err", err)
	}
}

// IsAlive reports the liveness flag without a round-trip.
func (c *Client) IsAlive() bool {
	return c.state.Alive()
}

// State returns the current connection state.
func (c *Client) State() connstate.State {
	return c.state.State()
}

// Ready is closed once the initial probe has an outcome.
func (c *Client) Ready() <-chan struct{} {
	return c.state.Ready()
}

// Wait blocks until the initial probe has an outcome; see connstate.Tracker.Wait.
func (c *Client) Wait(ctx context.Context) error {
	return c.state.Wait(ctx)
}

// Get returns the value stored under key. The second result is false when the
// key is missing or the store failed; the two cases are not distinguished.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Error("get failed", "key", key, "err", err)
		}
		return "", false
	}
	return string(val), true
}

// Set stores value under key, expiring after ttl, in a single atomic write.
// A non-positive ttl is rejected the way SETEX rejects it.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		c.log.Error("set failed", "key", key, "err", fmt.Sprintf("invalid expire time %s", ttl))
		return
	}
	if err := c.store.Set(ctx, key, encodeValue(value), ttl); err != nil {
		c.log.Error("set failed", "key", key, "err", err)
	}
}

// Del removes key.
func (c *Client) Del(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Error("del failed", "key", key, "err", err)
	}
}

// Close releases the store's connection.
func (c *Client) Close() error {
	return c.store.Close()
}

func encodeValue(v any) []byte {
	switch v := v.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	case fmt.Stringer:
		return []byte(v.String())
	default:
		return []byte(fmt.Sprint(v))
	}
}
