package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// DefaultConnectTimeout bounds Dial when the context has no deadline.
const DefaultConnectTimeout = 10 * time.Second

// Connection errors.
var (
	ErrConnectionClosed  = errors.New("connection closed")
	ErrConnectionLost    = errors.New("connection lost")
	ErrKeepAliveTimeout  = errors.New("keep-alive timeout")
	ErrUnsupportedScheme = errors.New("unsupported address scheme")
)

// ControlFlow tells the connection whether to keep delivering events.
type ControlFlow int

const (
	// Continue keeps the connection open.
	Continue ControlFlow = iota
	// Break closes the connection after the current event.
	Break
)

// String returns the control flow name.
func (c ControlFlow) String() string {
	switch c {
	case Continue:
		return "CONTINUE"
	case Break:
		return "BREAK"
	default:
		return "UNKNOWN"
	}
}

// Handler receives each event from the server, in order, on the
// connection's read goroutine.
type Handler func(event log.Event) ControlFlow

// ConnectionState is the lifecycle state of a viewer connection.
type ConnectionState int32

const (
	// StateConnecting indicates the dial is in progress.
	StateConnecting ConnectionState = iota

	// StateConnected indicates events are being delivered.
	StateConnected

	// StateClosing indicates a close was requested.
	StateClosing

	// StateClosed indicates the connection is finished.
	StateClosed
)

// String returns the connection state name.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ClientConfig configures a viewer connection.
type ClientConfig struct {
	// MaxMessageSize is the maximum message size (default: 1 MiB).
	MaxMessageSize uint32

	// ConnectTimeout is the dial timeout when ctx has no deadline (default: 10s).
	ConnectTimeout time.Duration

	// KeepAlive configures server liveness checks.
	KeepAlive KeepAliveConfig
}

// ParseAddress accepts "host:port" or "tcp://host:port" and returns the
// host:port part.
func ParseAddress(addr string) (string, error) {
	if scheme, rest, ok := strings.Cut(addr, "://"); ok {
		if scheme != "tcp" {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
		}
		addr = rest
	}
	addr = strings.TrimSuffix(addr, "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return addr, nil
}

// Dial connects to a log server with the default configuration.
// See DialWithConfig.
func Dial(ctx context.Context, addr string, handler Handler) (*Connection, error) {
	return DialWithConfig(ctx, addr, handler, ClientConfig{})
}

// DialWithConfig connects to a log server and starts delivering events to
// handler. The connection runs until the handler returns Break, Close is
// called, ctx is cancelled, or the server goes away.
func DialWithConfig(ctx context.Context, addr string, handler Handler, config ClientConfig) (*Connection, error) {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}

	hostPort, err := ParseAddress(addr)
	if err != nil {
		return nil, err
	}

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", hostPort)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Connection{
		conn:    conn,
		framer:  NewFramerWithMaxSize(conn, config.MaxMessageSize),
		handler: handler,
		addr:    hostPort,
		doneCh:  make(chan struct{}),
	}
	c.state.Store(int32(StateConnected))

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	if config.KeepAlive.PingInterval >= 0 {
		c.keepAlive = newKeepAlive(config.KeepAlive, c.sendPing, func() {
			c.shutdown(ErrKeepAliveTimeout)
		})
		go c.keepAlive.run(runCtx)
	}

	go func() {
		select {
		case <-runCtx.Done():
			c.shutdown(ctx.Err())
		case <-c.doneCh:
		}
	}()

	go c.readLoop()

	return c, nil
}

// Connection is a viewer's link to a log server.
type Connection struct {
	conn      net.Conn
	framer    *Framer
	handler   Handler
	addr      string
	keepAlive *keepAlive
	cancel    context.CancelFunc

	state    atomic.Int32
	received atomic.Uint64

	errOnce sync.Once
	err     error
	doneCh  chan struct{}
}

// Addr returns the server address this connection was dialed to.
func (c *Connection) Addr() string {
	return c.addr
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Received returns the number of events delivered to the handler.
func (c *Connection) Received() uint64 {
	return c.received.Load()
}

// Latency returns the round trip of the last answered keep-alive ping.
func (c *Connection) Latency() logtime.Duration {
	if c.keepAlive == nil {
		return logtime.Duration{}
	}
	return c.keepAlive.lastLatency()
}

// Done is closed once the read goroutine has exited and the handler will
// not be called again.
func (c *Connection) Done() <-chan struct{} {
	return c.doneCh
}

// Err returns why the connection ended. It is nil while the connection is
// open and after a close requested by either side.
func (c *Connection) Err() error {
	select {
	case <-c.doneCh:
		return c.err
	default:
		return nil
	}
}

// Close tells the server the viewer is leaving and closes the connection.
// It does not wait for the handler; use Done for that. Calling Close from
// inside the handler is allowed but returning Break is the usual way.
func (c *Connection) Close() error {
	if c.state.CompareAndSwap(int32(StateConnected), int32(StateClosing)) {
		if msg, err := EncodeClose(); err == nil {
			c.conn.SetWriteDeadline(time.Now().Add(closeWriteTimeout))
			c.framer.WriteFrame(msg)
		}
	}
	c.shutdown(nil)
	return nil
}

// shutdown records the first reason the connection ended and unblocks
// the read goroutine.
func (c *Connection) shutdown(reason error) {
	c.errOnce.Do(func() {
		c.err = reason
		c.state.Store(int32(StateClosing))
		c.cancel()
		c.conn.Close()
	})
}

func (c *Connection) sendPing(seq uint32) error {
	msg, err := EncodePing(seq)
	if err != nil {
		return err
	}
	return c.framer.WriteFrame(msg)
}

func (c *Connection) readLoop() {
	defer func() {
		c.state.Store(int32(StateClosed))
		close(c.doneCh)
	}()

	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrFrameTruncated) {
				err = ErrConnectionLost
			}
			c.shutdown(err)
			return
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			c.shutdown(err)
			return
		}

		switch msg.Type {
		case MessageEvent:
			c.received.Add(1)
			if c.handler(*msg.Event) == Break {
				c.Close()
				return
			}
		case MessagePing:
			if pong, err := EncodePong(msg.Sequence); err == nil {
				c.framer.WriteFrame(pong)
			}
		case MessagePong:
			if c.keepAlive != nil {
				c.keepAlive.pongReceived(msg.Sequence)
			}
		case MessageClose:
			c.shutdown(nil)
			return
		}
	}
}
