package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/simplesocket/simplesocket/client"
	"github.com/simplesocket/simplesocket/config"
	"github.com/simplesocket/simplesocket/lib/logger"
	"github.com/simplesocket/simplesocket/tcp"
)

var banner = `
       _            __                    __       __
  ___ (_)_ _  ___  / /__ ___ ___  ____ __/ /_____ / /_
 (_-</ /  ' \/ _ \/ / -_|_-</ _ \/ __//  '_/ -_) __/
/___/_/_/_/_/ .__/_/\__/___/\___/\__//_/\_\\__/\__/
           /_/
`

type serveCmd struct {
	Config string `short:"c" type:"path" help:"Config file, searched in the XDG config directories when omitted."`
	Port   int    `short:"p" help:"Port to listen on, overrides the config file."`
	Mode   string `short:"m" help:"Dispatch mode: echo, upper or ping. Overrides the config file."`
}

func (cmd *serveCmd) Run() error {
	if err := config.Setup(cmd.Config); err != nil {
		return err
	}
	props := config.Properties
	if cmd.Port != 0 {
		props.Port = cmd.Port
	}
	if cmd.Mode != "" {
		props.Mode = cmd.Mode
	}
	handler, err := makeHandler(props.Mode)
	if err != nil {
		return err
	}
	print(banner)
	err = logger.Setup(&logger.Settings{
		Path:       props.LogDir,
		Name:       "simplesocket",
		Ext:        "log",
		TimeFormat: "2006-01-02 15:04:05",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	})
	if err != nil {
		return err
	}
	logger.Infof("mode: %s", props.Mode)
	return tcp.ListenAndServeWithSignal(props.Port, &tcp.Config{
		Handler:         handler,
		MaxConnect:      uint32(props.MaxConnect),
		ReusePort:       props.ReusePort,
		ShutdownTimeout: time.Duration(props.ShutdownTimeout) * time.Second,
	})
}

type sendCmd struct {
	Addr    string        `arg:"" help:"Listener address, host:port."`
	Message []string      `arg:"" help:"Message to send, words are joined with spaces."`
	Timeout time.Duration `short:"t" default:"5s" help:"Timeout of the whole exchange."`
}

func (cmd *sendCmd) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()
	c := client.MakeClient(cmd.Addr, client.WithIOTimeout(cmd.Timeout))
	reply, err := c.Send(ctx, strings.Join(cmd.Message, " "))
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

var cli struct {
	Serve serveCmd `cmd:"" default:"1" help:"Start the listener."`
	Send  sendCmd  `cmd:"" help:"Send one message to an exchange mode listener and print the reply."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("simplesocket"),
		kong.Description("A concurrent tcp listener with exchange and handoff dispatch."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
