package kv

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisAddr is where a Redis server listens when nothing else is
// configured.
const DefaultRedisAddr = "localhost:6379"

// RedisStore implements Store using Redis (or Valkey) as the backend.
//
// The underlying client dials lazily and redials after a dropped connection.
// Those dials are surfaced as connect and error events through EventSource.
type RedisStore struct {
	client *redis.Client

	mu        sync.RWMutex
	onConnect []func()
	onError   []func(error)
}

// RedisConfig holds configuration for connecting to Redis.
type RedisConfig struct {
	Addr        string // host:port
	Password    string // optional
	DB          int    // database number
	DialTimeout time.Duration
}

// NewRedisStore creates a RedisStore. It does not touch the network; the first
// command (or Ping) opens the connection.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	if cfg.Addr == "" {
		cfg.Addr = DefaultRedisAddr
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	s := &RedisStore{client: client}
	client.AddHook(connHook{store: s})
	return s
}

// OnConnect registers fn to run after every successful dial.
func (s *RedisStore) OnConnect(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, fn)
}

// OnError registers fn to run after every failed dial or broken connection.
func (s *RedisStore) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = append(s.onError, fn)
}

// Set stores a value with the given key and TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a value by key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Ping checks the connection to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection to Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) emitConnect() {
	s.mu.RLock()
	fns := s.onConnect
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *RedisStore) emitError(err error) {
	s.mu.RLock()
	fns := s.onError
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(err)
	}
}

// connHook turns go-redis dials and transport failures into store events.
type connHook struct {
	store *RedisStore
}

func (h connHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.store.emitError(err)
			return nil, err
		}
		h.store.emitConnect()
		return conn, nil
	}
}

func (h connHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.observe(err)
		return err
	}
}

func (h connHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		h.observe(err)
		return err
	}
}

// observe turns a command outcome into an event. Any server reply, error
// replies included, means the connection works and is reported as a connect.
// Failures that never reached the server report nothing.
func (h connHook) observe(err error) {
	switch {
	case isCallerError(err):
	case isConnError(err):
		h.store.emitError(err)
	default:
		h.store.emitConnect()
	}
}

// isCallerError reports failures raised on the client side before a command
// reached the server.
func isCallerError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, redis.ErrPoolTimeout) ||
		errors.Is(err, redis.ErrClosed)
}

// isConnError separates transport failures from replies the server sent on a
// healthy connection (missing keys, WRONGTYPE, ...).
func isConnError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) || isCallerError(err) {
		return false
	}
	var reply redis.Error
	return !errors.As(err, &reply)
}

// Ensure RedisStore implements Store and EventSource.
var (
	_ Store       = (*RedisStore)(nil)
	_ EventSource = (*RedisStore)(nil)
)
