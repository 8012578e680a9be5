package transport

import (
	"context"
	"net"

	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// EventServer streams log events to connected viewers.
// Implemented by Server.
type EventServer interface {
	log.Logger

	// Start begins accepting connections.
	Start(ctx context.Context) error

	// Stop gracefully stops the server.
	Stop() error

	// Addr returns the server's listen address.
	Addr() net.Addr

	// ConnectionCount returns the number of active connections.
	ConnectionCount() int

	// Broadcast sends an event to all viewers.
	Broadcast(event log.Event) error
}

// ViewerConnection is a viewer's side of the link.
// Implemented by Connection.
type ViewerConnection interface {
	// State returns the current connection state.
	State() ConnectionState

	// Done is closed when no more events will be delivered.
	Done() <-chan struct{}

	// Err returns why the connection ended, nil for a requested close.
	Err() error

	// Latency returns the last keep-alive round trip.
	Latency() logtime.Duration

	// Close closes the connection.
	Close() error
}

// FrameReadWriter provides length-prefixed frame I/O.
// Implemented by Framer.
type FrameReadWriter interface {
	// ReadFrame reads a length-prefixed frame.
	ReadFrame() ([]byte, error)

	// WriteFrame writes a length-prefixed frame.
	WriteFrame(data []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ EventServer      = (*Server)(nil)
	_ ViewerConnection = (*Connection)(nil)
	_ FrameReadWriter  = (*Framer)(nil)
)
