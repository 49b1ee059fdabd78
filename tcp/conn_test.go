package tcp

import (
	"net"
	"testing"
)

func TestConnCloseOnce(t *testing.T) {
	server, peer := net.Pipe()
	defer peer.Close()
	c := newConn(server)
	if c.Closed() {
		t.Error("new conn should be open")
	}
	if err := c.Close(); err != nil {
		t.Error(err)
	}
	if !c.Closed() {
		t.Error("conn should be closed")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close should be swallowed: %v", err)
	}
	// net.Pipe has no half close
	if err := c.CloseWrite(); err != nil {
		t.Error(err)
	}
}
