// Package transport streams log events from a producer to remote viewers.
//
// The link handles:
//   - Length-prefixed message framing
//   - CBOR message envelopes carrying events and control messages
//   - Fan-out to many viewers with per-viewer queues and optional replay
//   - Keep-alive ping/pong so a viewer notices a dead server
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   CBOR Messages (log.Event)    │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Viewer Side
//
// Dial connects and hands every event to a Handler on one goroutine, in the
// order the server sent them. The handler returns Continue to keep going or
// Break to close the link. Addresses are "host:port" or "tcp://host:port".
//
//	conn, err := transport.Dial(ctx, "tcp://127.0.0.1:9876", func(e log.Event) transport.ControlFlow {
//		fmt.Println(e.Time, e.Text)
//		return transport.Continue
//	})
//
// # Server Side
//
// Server implements log.Logger, so producers log to it directly. A slow
// viewer never blocks the producer: once its queue is full it misses events
// and ServerConn.Dropped counts them.
//
// # Keep-Alive
//
// The viewer pings the server:
//   - Ping interval: 30 seconds
//   - Pong timeout: 5 seconds
//   - Max missed pongs: 3
package transport
