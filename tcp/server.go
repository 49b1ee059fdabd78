package tcp

/**
 * A tcp listener which dispatches every accepted connection to its own goroutine
 */

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	stdatomic "sync/atomic"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/simplesocket/simplesocket/interface/tcp"
	"github.com/simplesocket/simplesocket/lib/logger"
	"github.com/simplesocket/simplesocket/lib/sync/atomic"
	"github.com/simplesocket/simplesocket/lib/sync/wait"
)

var (
	// ErrInvalidPort is returned by Start for a port outside 1..65535
	ErrInvalidPort = errors.New("tcp: port must be a positive integer not greater than 65535")
	// ErrListenerClosed is returned by Start after the listener has been stopped
	ErrListenerClosed = errors.New("tcp: listener closed")
)

const (
	// points Output at the caller of infof/errorf
	callerDepth = 2

	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second

	// DefaultShutdownTimeout bounds the wait for in-flight connections in Serve
	DefaultShutdownTimeout = 10 * time.Second
)

// Config stores tcp listener properties
type Config struct {
	// Handler selects the dispatch mode, see MakeExchangeHandler and MakeHandoffHandler.
	// The accept loop does nothing without a handler.
	Handler tcp.Handler
	// Logger receives INFO and ERROR entries, logger.DefaultLogger is used if nil
	Logger logger.ILogger
	// MaxConnect limits connections handled at the same time, 0 means unlimited
	MaxConnect uint32
	// ReusePort sets SO_REUSEPORT on the listening socket
	ReusePort bool
	// ShutdownTimeout bounds how long Serve waits for in-flight connections
	ShutdownTimeout time.Duration
}

// Listener binds a port and serves each accepted connection in its own goroutine.
// Unbound -> Running -> Stopped, a stopped listener cannot be started again.
type Listener struct {
	// guards listener and pool
	mu       sync.Mutex
	listener net.Listener
	pool     *ants.Pool

	// guards handler and log, read by every in-flight goroutine
	cbMu    sync.RWMutex
	handler tcp.Handler
	log     logger.ILogger

	maxConnect uint32
	reusePort  bool

	running    atomic.Boolean
	stopped    atomic.Boolean
	activeConn int32
	// accept loop and in-flight connections
	waitDone wait.Wait
}

// MakeListener creates an unbound Listener
func MakeListener(cfg *Config) *Listener {
	log := cfg.Logger
	if log == nil {
		log = logger.DefaultLogger
	}
	return &Listener{
		handler:    cfg.Handler,
		log:        log,
		maxConnect: cfg.MaxConnect,
		reusePort:  cfg.ReusePort,
	}
}

// Start binds port on all interfaces and returns once the accept loop is launched.
// Calling Start on a bound listener does nothing.
func (l *Listener) Start(port int) error {
	if port <= 0 || port > 65535 {
		return errors.Wrapf(ErrInvalidPort, "port %d", port)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return nil
	}
	if l.stopped.Get() {
		return ErrListenerClosed
	}

	lc := net.ListenConfig{}
	if l.reusePort {
		lc.Control = reusePortControl
	}
	listener, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return errors.Wrapf(err, "bind port %d", port)
	}
	var pool *ants.Pool
	if l.maxConnect > 0 {
		pool, err = ants.NewPool(int(l.maxConnect))
		if err != nil {
			_ = listener.Close()
			return errors.Wrap(err, "create worker pool")
		}
	}
	l.listener = listener
	l.pool = pool
	l.running.Set(true)
	l.waitDone.Add(1)
	go l.serve(listener, pool)
	l.infof("bind: %s, start listening...", listener.Addr())
	return nil
}

func (l *Listener) callbacks() (tcp.Handler, logger.ILogger) {
	l.cbMu.RLock()
	defer l.cbMu.RUnlock()
	return l.handler, l.log
}

func (l *Listener) infof(format string, v ...interface{}) {
	if _, log := l.callbacks(); log != nil {
		log.Output(logger.INFO, callerDepth, fmt.Sprintf(format, v...))
	}
}

func (l *Listener) errorf(format string, v ...interface{}) {
	if _, log := l.callbacks(); log != nil {
		log.Output(logger.ERROR, callerDepth, fmt.Sprintf(format, v...))
	}
}

// accepting reports whether the loop owning listener should keep accepting
func (l *Listener) accepting(listener net.Listener) bool {
	if !l.running.Get() {
		return false
	}
	l.mu.Lock()
	bound := l.listener == listener
	l.mu.Unlock()
	handler, _ := l.callbacks()
	return bound && handler != nil
}

func (l *Listener) serve(listener net.Listener, pool *ants.Pool) {
	defer l.waitDone.Done()
	var delay time.Duration
	for l.accepting(listener) {
		conn, err := listener.Accept()
		if err != nil {
			l.errorf("accept error: %v", err)
			if errors.Is(err, net.ErrClosed) {
				// closed by Stop
				continue
			}
			// learn from net/http/server.go#Serve()
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			time.Sleep(delay)
			continue
		}
		delay = 0
		l.infof("accept link: %s", conn.RemoteAddr())
		l.dispatch(newConn(conn), pool)
	}
}

// dispatch never waits for the connection to be served, except for a free worker when pool is bounded
func (l *Listener) dispatch(conn *Conn, pool *ants.Pool) {
	handler, _ := l.callbacks()
	if handler == nil {
		_ = conn.Close()
		return
	}
	l.waitDone.Add(1)
	stdatomic.AddInt32(&l.activeConn, 1)
	task := func() {
		l.handle(handler, conn)
	}
	if pool == nil {
		go task()
		return
	}
	if err := pool.Submit(task); err != nil {
		l.errorf("dispatch %s: %v", conn.RemoteAddr(), err)
		l.release(conn)
	}
}

func (l *Listener) handle(handler tcp.Handler, conn *Conn) {
	defer func() {
		if e := recover(); e != nil {
			l.errorf("handle %s: panic: %v\n%s", conn.RemoteAddr(), e, debug.Stack())
		}
		l.release(conn)
	}()
	if err := handler.Handle(context.Background(), conn); err != nil {
		l.errorf("handle %s: %+v", conn.RemoteAddr(), err)
	}
}

func (l *Listener) release(conn *Conn) {
	_ = conn.Close()
	stdatomic.AddInt32(&l.activeConn, -1)
	l.waitDone.Done()
}

// Stop closes the listening socket. Connections already dispatched are neither waited for nor interrupted.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	l.running.Set(false)
	l.stopped.Set(true)
	err := l.listener.Close() // listener.Accept() will return err immediately
	l.listener = nil
	if l.pool != nil {
		// running tasks finish, queued submits fail
		l.pool.Release()
		l.pool = nil
	}
	return errors.Wrap(err, "close listener")
}

// Close stops the listener and releases the handler and the logger
func (l *Listener) Close() error {
	err := l.Stop()
	l.cbMu.Lock()
	handler := l.handler
	l.handler = nil
	l.log = nil
	l.cbMu.Unlock()
	if handler != nil {
		err = multierr.Append(err, handler.Close())
	}
	return err
}

// Addr returns the bound address, nil if not bound
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// ActiveConns returns the number of connections being handled
func (l *Listener) ActiveConns() int32 {
	return stdatomic.LoadInt32(&l.activeConn)
}

// Wait blocks until the accept loop and all in-flight connections finished or timeout, returns true if timeout
func (l *Listener) Wait(timeout time.Duration) bool {
	return l.waitDone.WaitWithTimeout(timeout)
}

// Serve binds port and handles requests, blocking until closeChan fires
func Serve(port int, cfg *Config, closeChan <-chan struct{}) error {
	listener := MakeListener(cfg)
	if err := listener.Start(port); err != nil {
		return err
	}
	<-closeChan
	logger.Info("shutting down...")
	err := listener.Close()
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	if listener.Wait(timeout) {
		logger.Warn(fmt.Sprintf("%d connections still active after %s", listener.ActiveConns(), timeout))
	}
	return err
}

// ListenAndServeWithSignal binds port and handles requests, blocking until receive stop signal
func ListenAndServeWithSignal(port int, cfg *Config) error {
	closeChan := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info(fmt.Sprintf("get exit signal: %s", sig))
			close(closeChan)
		case <-done:
		}
	}()
	return Serve(port, cfg, closeChan)
}
