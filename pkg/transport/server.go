package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/logview-io/logview-go/pkg/log"
)

const (
	// DefaultPort is the port a log server listens on when none is given.
	DefaultPort = 9876

	// DefaultSendQueue is the per-viewer queue length.
	DefaultSendQueue = 256

	// closeWriteTimeout bounds the close notice sent to viewers on Stop.
	closeWriteTimeout = time.Second
)

// Server errors.
var (
	ErrServerRunning    = errors.New("server already running")
	ErrServerNotRunning = errors.New("server not running")
	ErrSendQueueFull    = errors.New("send queue full")
)

// ServerConfig configures a log server.
type ServerConfig struct {
	// Address to listen on (e.g., ":9876" or "127.0.0.1:0").
	Address string

	// MaxMessageSize is the maximum message size (default: 1 MiB).
	MaxMessageSize uint32

	// Backlog is the number of recent events replayed to each new viewer.
	// Zero disables replay.
	Backlog int

	// SendQueue is the number of encoded events buffered per viewer before
	// new events are dropped for that viewer (default: 256).
	SendQueue int

	// OnConnect is called when a viewer connects.
	OnConnect func(conn *ServerConn)

	// OnDisconnect is called when a viewer connection is closed.
	OnDisconnect func(conn *ServerConn)

	// OnError is called when an error occurs. conn is nil for server-level errors.
	OnError func(conn *ServerConn, err error)
}

// Server accepts viewer connections and streams log events to all of them.
// It implements log.Logger so it can sit in a log.MultiLogger next to a
// FileLogger.
type Server struct {
	config   ServerConfig
	listener net.Listener

	// Active connections and replay buffer share one lock so a new viewer
	// sees every event exactly once.
	mu      sync.Mutex
	conns   map[*ServerConn]struct{}
	backlog [][]byte

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a new log server.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.SendQueue <= 0 {
		config.SendQueue = DefaultSendQueue
	}
	return &Server{
		config: config,
		conns:  make(map[*ServerConn]struct{}),
	}
}

// Start starts the server and begins accepting connections. ctx only
// bounds setting up the listener; use Stop to shut the server down.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrServerRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the server, tells every viewer it is closing and waits for
// all connection goroutines to finish.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.listener.Close()

	closeMsg, _ := EncodeClose()
	s.mu.Lock()
	for conn := range s.conns {
		conn.conn.SetWriteDeadline(time.Now().Add(closeWriteTimeout))
		conn.framer.WriteFrame(closeMsg)
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active viewer connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Broadcast sends an event to every connected viewer and, when a backlog
// is configured, keeps it for viewers that connect later. Viewers whose
// queue is full miss the event; see ServerConn.Dropped.
func (s *Server) Broadcast(event log.Event) error {
	data, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if uint64(len(data)) > uint64(s.config.MaxMessageSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), s.config.MaxMessageSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Backlog > 0 {
		if len(s.backlog) == s.config.Backlog {
			copy(s.backlog, s.backlog[1:])
			s.backlog = s.backlog[:len(s.backlog)-1]
		}
		s.backlog = append(s.backlog, data)
	}
	for conn := range s.conns {
		conn.enqueue(data)
	}
	return nil
}

// Log broadcasts the event. Failures go to OnError.
func (s *Server) Log(event log.Event) {
	if err := s.Broadcast(event); err != nil {
		s.reportError(nil, err)
	}
}

func (s *Server) reportError(conn *ServerConn, err error) {
	if s.config.OnError != nil {
		s.config.OnError(conn, err)
	}
}

// acceptLoop accepts incoming connections.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.reportError(nil, fmt.Errorf("accept error: %w", err))
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection serves one viewer until it disconnects.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	sconn := &ServerConn{
		conn:    conn,
		framer:  NewFramerWithMaxSize(conn, s.config.MaxMessageSize),
		server:  s,
		sendCh:  make(chan []byte, s.config.SendQueue+s.config.Backlog),
		closeCh: make(chan struct{}),
		connID:  uuid.New().String(),
	}

	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[sconn] = struct{}{}
	for _, data := range s.backlog {
		sconn.enqueue(data)
	}
	s.mu.Unlock()

	if s.config.OnConnect != nil {
		s.config.OnConnect(sconn)
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		sconn.writeLoop()
	}()

	sconn.readLoop()
	sconn.Close()
	<-writerDone

	s.mu.Lock()
	delete(s.conns, sconn)
	s.mu.Unlock()

	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(sconn)
	}
}

// ServerConn is one viewer connected to the server.
type ServerConn struct {
	conn      net.Conn
	framer    *Framer
	server    *Server
	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	connID    string
	dropped   atomic.Uint64
}

// ConnID returns the unique connection identifier.
func (c *ServerConn) ConnID() string {
	return c.connID
}

// RemoteAddr returns the remote address of the viewer.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Dropped returns how many messages were discarded because the viewer's
// queue was full.
func (c *ServerConn) Dropped() uint64 {
	return c.dropped.Load()
}

// Send queues an encoded message for the viewer. It fails with
// ErrSendQueueFull instead of blocking when the viewer is behind.
func (c *ServerConn) Send(data []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	if !c.enqueue(data) {
		return fmt.Errorf("%w for %s", ErrSendQueueFull, c.connID)
	}
	return nil
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

func (c *ServerConn) enqueue(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// writeLoop drains the send queue onto the socket.
func (c *ServerConn) writeLoop() {
	for {
		select {
		case <-c.closeCh:
			return
		case data := <-c.sendCh:
			if err := c.framer.WriteFrame(data); err != nil {
				c.reportError(err)
				c.Close()
				return
			}
		}
	}
}

// readLoop handles control messages from the viewer.
func (c *ServerConn) readLoop() {
	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			c.reportError(err)
			return
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			c.reportError(err)
			continue
		}

		switch msg.Type {
		case MessagePing:
			if pong, err := EncodePong(msg.Sequence); err == nil {
				c.enqueue(pong)
			}
		case MessageClose:
			return
		default:
			c.reportError(fmt.Errorf("%w: unexpected %s from viewer", ErrInvalidMessage, msg.Type))
		}
	}
}

// reportError forwards errors that are not part of a normal shutdown.
func (c *ServerConn) reportError(err error) {
	select {
	case <-c.closeCh:
		return
	default:
	}
	if !c.server.running.Load() || errors.Is(err, io.EOF) {
		return
	}
	c.server.reportError(c, err)
}
