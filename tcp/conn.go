package tcp

import (
	"net"

	"github.com/simplesocket/simplesocket/lib/sync/atomic"
)

// Conn is an accepted connection owned by exactly one handling goroutine.
// Close may be called by the application and by the listener, only the first call reaches the socket.
type Conn struct {
	net.Conn
	closed atomic.Boolean
}

func newConn(conn net.Conn) *Conn {
	return &Conn{Conn: conn}
}

// Close closes the underlying connection once, later calls return nil
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.Conn.Close()
}

// Closed reports whether Close has been called
func (c *Conn) Closed() bool {
	return c.closed.Get()
}

// CloseWrite shuts down the writing side of a tcp connection
func (c *Conn) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}
