package transport

import (
	"context"
	"sync"
	"time"

	"github.com/logview-io/logview-go/pkg/logtime"
)

// Keep-alive constants.
const (
	// DefaultPingInterval is the default interval between pings.
	DefaultPingInterval = 30 * time.Second

	// DefaultPongTimeout is the default timeout waiting for a pong response.
	DefaultPongTimeout = 5 * time.Second

	// DefaultMaxMissedPongs is the default number of missed pongs before disconnect.
	DefaultMaxMissedPongs = 3
)

// KeepAliveConfig configures how a viewer checks that its server is alive.
type KeepAliveConfig struct {
	// PingInterval is the interval between pings. Negative disables keep-alive.
	PingInterval time.Duration

	// PongTimeout is the timeout waiting for a pong response.
	PongTimeout time.Duration

	// MaxMissedPongs is the number of missed pongs before disconnect.
	MaxMissedPongs int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		PingInterval:   DefaultPingInterval,
		PongTimeout:    DefaultPongTimeout,
		MaxMissedPongs: DefaultMaxMissedPongs,
	}
}

// DetectionDelay returns the longest a dead peer can go unnoticed:
// PingInterval * MaxMissedPongs + PongTimeout.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.PingInterval*time.Duration(c.MaxMissedPongs) + c.PongTimeout
}

func (c KeepAliveConfig) withDefaults() KeepAliveConfig {
	if c.PingInterval == 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = DefaultPongTimeout
	}
	if c.MaxMissedPongs == 0 {
		c.MaxMissedPongs = DefaultMaxMissedPongs
	}
	return c
}

// keepAlive sends pings on a ticker and fires onTimeout after too many
// consecutive pings go unanswered.
type keepAlive struct {
	config    KeepAliveConfig
	sendPing  func(seq uint32) error
	onTimeout func()
	pongCh    chan uint32

	mu          sync.Mutex
	seq         uint32
	pending     bool
	lastPing    time.Time
	missedPongs int
	latency     logtime.Duration
}

func newKeepAlive(config KeepAliveConfig, sendPing func(seq uint32) error, onTimeout func()) *keepAlive {
	return &keepAlive{
		config:    config.withDefaults(),
		sendPing:  sendPing,
		onTimeout: onTimeout,
		pongCh:    make(chan uint32, 1),
	}
}

// pongReceived hands a pong sequence number to the loop.
func (ka *keepAlive) pongReceived(seq uint32) {
	select {
	case ka.pongCh <- seq:
	default:
	}
}

// lastLatency returns the round trip of the most recent answered ping.
func (ka *keepAlive) lastLatency() logtime.Duration {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.latency
}

func (ka *keepAlive) run(ctx context.Context) {
	ticker := time.NewTicker(ka.config.PingInterval)
	defer ticker.Stop()

	ka.ping()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ka.expired() {
				if ka.onTimeout != nil {
					ka.onTimeout()
				}
				return
			}
			ka.ping()
		case seq := <-ka.pongCh:
			ka.pong(seq)
		}
	}
}

func (ka *keepAlive) ping() {
	ka.mu.Lock()
	ka.seq++
	seq := ka.seq
	ka.pending = true
	ka.lastPing = time.Now()
	ka.mu.Unlock()

	// A failed send is left for the pong timeout to catch.
	_ = ka.sendPing(seq)
}

// expired records a missed pong if the pending ping has timed out and
// reports whether the miss limit is reached.
func (ka *keepAlive) expired() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	if ka.pending && time.Since(ka.lastPing) >= ka.config.PongTimeout {
		ka.pending = false
		ka.missedPongs++
	}
	return ka.missedPongs >= ka.config.MaxMissedPongs
}

func (ka *keepAlive) pong(seq uint32) {
	ka.mu.Lock()
	defer ka.mu.Unlock()

	// Late pongs for earlier pings are ignored.
	if !ka.pending || seq != ka.seq {
		return
	}
	ka.pending = false
	ka.missedPongs = 0
	ka.latency = logtime.DurationFromStd(time.Since(ka.lastPing))
}
