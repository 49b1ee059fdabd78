package tcp

/**
 * Exchange mode: the listener owns the read, respond, close protocol
 * and the application only maps request text to response text
 */

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ExchangeFunc maps a trimmed request to a response, a blank response sends nothing back
type ExchangeFunc func(ctx context.Context, msg string) (string, error)

// ExchangeHandler reads the whole request until the peer half-closes, then writes one response
type ExchangeHandler struct {
	mu sync.RWMutex
	fn ExchangeFunc
}

// MakeExchangeHandler creates ExchangeHandler
func MakeExchangeHandler(fn ExchangeFunc) *ExchangeHandler {
	return &ExchangeHandler{fn: fn}
}

// MakeEchoHandler creates an ExchangeHandler which responds with the trimmed request
func MakeEchoHandler() *ExchangeHandler {
	return MakeExchangeHandler(func(ctx context.Context, msg string) (string, error) {
		return msg, nil
	})
}

func (h *ExchangeHandler) callback() ExchangeFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fn
}

// Handle serves one request/response exchange on conn
func (h *ExchangeHandler) Handle(ctx context.Context, conn net.Conn) error {
	fn := h.callback()
	if fn == nil {
		return nil
	}
	msg, err := readText(conn)
	if err != nil {
		return errors.Wrap(err, "read request")
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil
	}
	resp, err := fn(ctx, msg)
	if err != nil {
		return errors.WithMessage(err, "exchange")
	}
	if strings.TrimSpace(resp) == "" {
		return nil
	}
	writer := bufio.NewWriter(conn)
	if _, err = writer.WriteString(resp); err != nil {
		return errors.Wrap(err, "write response")
	}
	return errors.Wrap(writer.Flush(), "flush response")
}

// readText reads until EOF. A leading byte order mark selects UTF-8 or UTF-16,
// invalid UTF-8 is replaced with U+FFFD.
func readText(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	raw, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Close clears the callback, connections accepted later get no response
func (h *ExchangeHandler) Close() error {
	h.mu.Lock()
	h.fn = nil
	h.mu.Unlock()
	return nil
}
