package tcp

import (
	"context"
	"net"
	"sync"

	"github.com/simplesocket/simplesocket/interface/tcp"
)

// HandoffHandler passes the raw connection to the application.
// The listener closes the connection after the callback returns.
type HandoffHandler struct {
	mu sync.RWMutex
	fn tcp.HandleFunc
}

// MakeHandoffHandler creates HandoffHandler
func MakeHandoffHandler(fn tcp.HandleFunc) *HandoffHandler {
	return &HandoffHandler{fn: fn}
}

// Handle invokes the callback once
func (h *HandoffHandler) Handle(ctx context.Context, conn net.Conn) error {
	h.mu.RLock()
	fn := h.fn
	h.mu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, conn)
}

// Close clears the callback
func (h *HandoffHandler) Close() error {
	h.mu.Lock()
	h.fn = nil
	h.mu.Unlock()
	return nil
}
