package tcp

import (
	"context"
	"net"
)

// HandleFunc represents application handler function which owns conn until it returns
type HandleFunc func(ctx context.Context, conn net.Conn) error

// Handler represents application server over tcp
type Handler interface {
	// Handle serves one accepted connection. The listener closes conn after Handle returns
	// and logs the returned error.
	Handle(ctx context.Context, conn net.Conn) error
	// Close releases the application callback, Handle does nothing afterwards
	Close() error
}
