package docstore

import (
	"context"
	"time"

	"github.com/quatton/filesmanager/pkg/connstate"
	"github.com/quatton/filesmanager/pkg/fmlog"
)

const (
	UsersCollection = "users"
	FilesCollection = "files"
)

const defaultConnectTimeout = 10 * time.Second

// Backend is an open session with a document store.
type Backend interface {
	// CountDocuments returns the number of documents in collection.
	CountDocuments(ctx context.Context, collection string) (int64, error)
	Close(ctx context.Context) error
}

// Dialer opens a Backend. It is called exactly once per Client.
type Dialer func(ctx context.Context) (Backend, error)

// Client owns one document-store session for the life of the process.
type Client struct {
	state   *connstate.Tracker
	backend Backend // written once before state leaves pending
	log     *fmlog.Logger
}

type options struct {
	log            *fmlog.Logger
	connectTimeout time.Duration
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

// WithConnectTimeout bounds the background connect.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// New returns a pending Client and starts dialing in the background. The
// Client reports not alive until the dial succeeds; if it fails, the Client
// stays failed for good.
func New(dial Dialer, opts ...Option) *Client {
	o := options{
		log:            fmlog.NewDefault(),
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		state: connstate.NewOneShot(),
		log:   o.log.Component("db"),
	}
	go c.connect(dial, o.connectTimeout)
	return c
}

func (c *Client) connect(dial Dialer, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	backend, err := dial(ctx)
	if err != nil {
		c.state.MarkDown(err)
		c.log.Error("failed to connect to document store", "err", err)
		return
	}

	// The handle must be in place before the flag can read true.
	c.backend = backend
	c.state.MarkConnected()
	c.log.Info("connected to document store")
}

// IsAlive reports whether the initial connect succeeded. No round-trip.
func (c *Client) IsAlive() bool {
	return c.state.Alive()
}

// State returns the connection state.
func (c *Client) State() connstate.State {
	return c.state.State()
}

// Ready is closed once the background connect has finished.
func (c *Client) Ready() <-chan struct{} {
	return c.state.Ready()
}

// Wait blocks until the background connect has finished or ctx is done. It
// returns nil on success and the connect error otherwise.
func (c *Client) Wait(ctx context.Context) error {
	return c.state.Wait(ctx)
}

// CountDocuments returns the size of collection, or 0 when the store is not
// alive or the query fails.
func (c *Client) CountDocuments(ctx context.Context, collection string) int64 {
	if !c.IsAlive() {
		return 0
	}
	n, err := c.backend.CountDocuments(ctx, collection)
	if err != nil {
		c.log.Error("count failed", "collection", collection, "err", err)
		return 0
	}
	return n
}

// NbUsers returns the number of users, or 0.
func (c *Client) NbUsers(ctx context.Context) int64 {
	return c.CountDocuments(ctx, UsersCollection)
}

// NbFiles returns the number of files, or 0.
func (c *Client) NbFiles(ctx context.Context) int64 {
	return c.CountDocuments(ctx, FilesCollection)
}

// Close ends the session if one was opened. The Client keeps its state.
func (c *Client) Close(ctx context.Context) error {
	if !c.IsAlive() {
		return nil
	}
	return c.backend.Close(ctx)
}
