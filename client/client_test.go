package client

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplesocket/simplesocket/tcp"
)

func serve(t *testing.T, cfg *tcp.Config) string {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	l := tcp.MakeListener(cfg)
	require.NoError(t, l.Start(port))
	t.Cleanup(func() {
		_ = l.Close()
	})
	return fmt.Sprintf("127.0.0.1:%d", port)
}

func TestSend(t *testing.T) {
	addr := serve(t, &tcp.Config{Handler: tcp.MakeEchoHandler()})
	c := MakeClient(addr)
	reply, err := c.Send(context.Background(), " hello\n")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	reply, err = c.Send(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestSendTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	addr := serve(t, &tcp.Config{Handler: tcp.MakeHandoffHandler(func(ctx context.Context, conn net.Conn) error {
		<-block
		return nil
	})})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := MakeClient(addr).Send(ctx, "hello")
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestSendDialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	_, err = MakeClient(addr, WithDialTimeout(time.Second)).Send(context.Background(), "hello")
	assert.Error(t, err)
}
