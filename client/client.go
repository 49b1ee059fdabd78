package client

/**
 * A client for exchange mode: one message per connection, the reply ends with EOF
 */

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultDialTimeout = 3 * time.Second
	defaultIOTimeout   = 10 * time.Second
)

// Client sends text messages to an exchange mode listener
type Client struct {
	addr        string
	dialTimeout time.Duration
	ioTimeout   time.Duration
}

// Option customizes Client
type Option func(c *Client)

// WithDialTimeout bounds connection establishment
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.dialTimeout = d
	}
}

// WithIOTimeout bounds the whole write and read of one exchange
func WithIOTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.ioTimeout = d
	}
}

// MakeClient creates a new client
func MakeClient(addr string, opts ...Option) *Client {
	c := &Client{
		addr:        addr,
		dialTimeout: defaultDialTimeout,
		ioTimeout:   defaultIOTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send writes msg, half-closes the connection and returns everything the server writes back.
// An empty reply means the server had nothing to say.
func (c *Client) Send(ctx context.Context, msg string) (string, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", errors.Wrapf(err, "dial %s", c.addr)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.ioTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if _, err = io.WriteString(conn, msg); err != nil {
		return "", errors.Wrap(err, "write request")
	}
	// the server reads until EOF
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err = tcpConn.CloseWrite(); err != nil {
			return "", errors.Wrap(err, "close write")
		}
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", errors.Wrap(err, "read reply")
	}
	return string(reply), nil
}
