package main

import (
	"context"
	"io"
	"net"
	"strings"

	"github.com/pkg/errors"

	tcpface "github.com/simplesocket/simplesocket/interface/tcp"
	"github.com/simplesocket/simplesocket/tcp"
)

const pingSize = 4

var (
	pingMsg = []byte("PING")
	pongMsg = []byte("PONG")
)

func makeHandler(mode string) (tcpface.Handler, error) {
	switch strings.ToLower(mode) {
	case "echo":
		return tcp.MakeEchoHandler(), nil
	case "upper":
		return tcp.MakeExchangeHandler(upper), nil
	case "ping":
		return tcp.MakeHandoffHandler(pingPong), nil
	default:
		return nil, errors.Errorf("unknown mode %q, expect echo, upper or ping", mode)
	}
}

func upper(ctx context.Context, msg string) (string, error) {
	return strings.ToUpper(msg), nil
}

// pingPong answers every 4 byte PING with PONG, anything else ends the session
func pingPong(ctx context.Context, conn net.Conn) error {
	buf := make([]byte, pingSize)
	for {
		_, err := io.ReadFull(conn, buf)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read ping")
		}
		if string(buf) != string(pingMsg) {
			return nil
		}
		if _, err = conn.Write(pongMsg); err != nil {
			return errors.Wrap(err, "write pong")
		}
	}
}
