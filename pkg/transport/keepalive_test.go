package transport

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeepAliveConfig(t *testing.T) {
	config := DefaultKeepAliveConfig()

	if config.PingInterval != DefaultPingInterval {
		t.Errorf("PingInterval = %v, want %v", config.PingInterval, DefaultPingInterval)
	}
	if config.PongTimeout != DefaultPongTimeout {
		t.Errorf("PongTimeout = %v, want %v", config.PongTimeout, DefaultPongTimeout)
	}
	if config.MaxMissedPongs != DefaultMaxMissedPongs {
		t.Errorf("MaxMissedPongs = %d, want %d", config.MaxMissedPongs, DefaultMaxMissedPongs)
	}

	if got, want := config.DetectionDelay(), 95*time.Second; got != want {
		t.Errorf("DetectionDelay = %v, want %v", got, want)
	}
}

func TestKeepAliveWithDefaults(t *testing.T) {
	config := KeepAliveConfig{PongTimeout: time.Second}.withDefaults()

	if config.PingInterval != DefaultPingInterval {
		t.Errorf("PingInterval = %v, want default", config.PingInterval)
	}
	if config.PongTimeout != time.Second {
		t.Errorf("PongTimeout = %v, want 1s", config.PongTimeout)
	}
	if config.MaxMissedPongs != DefaultMaxMissedPongs {
		t.Errorf("MaxMissedPongs = %d, want default", config.MaxMissedPongs)
	}
}

func TestKeepAliveAnsweredPings(t *testing.T) {
	var pings atomic.Int32
	var timedOut atomic.Bool

	var ka *keepAlive
	ka = newKeepAlive(KeepAliveConfig{
		PingInterval:   20 * time.Millisecond,
		PongTimeout:    10 * time.Millisecond,
		MaxMissedPongs: 2,
	}, func(seq uint32) error {
		pings.Add(1)
		go ka.pongReceived(seq)
		return nil
	}, func() {
		timedOut.Store(true)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ka.run(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	if timedOut.Load() {
		t.Error("timeout fired although every ping was answered")
	}
	if pings.Load() < 3 {
		t.Errorf("expected at least 3 pings, got %d", pings.Load())
	}
}

func TestKeepAliveTimeout(t *testing.T) {
	timedOut := make(chan struct{})

	ka := newKeepAlive(KeepAliveConfig{
		PingInterval:   20 * time.Millisecond,
		PongTimeout:    10 * time.Millisecond,
		MaxMissedPongs: 2,
	}, func(uint32) error {
		return nil
	}, func() {
		close(timedOut)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ka.run(ctx)

	select {
	case <-timedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout callback not called")
	}
}

func TestKeepAliveIgnoresStalePong(t *testing.T) {
	ka := newKeepAlive(DefaultKeepAliveConfig(), func(uint32) error { return nil }, nil)

	ka.ping()
	ka.ping()
	ka.pong(1)

	ka.mu.Lock()
	pending := ka.pending
	ka.mu.Unlock()
	if !pending {
		t.Error("pong for an earlier ping cleared the pending ping")
	}

	ka.pong(2)
	ka.mu.Lock()
	pending = ka.pending
	ka.mu.Unlock()
	if pending {
		t.Error("matching pong did not clear the pending ping")
	}
	if ka.lastLatency().Nanos() < 0 {
		t.Errorf("negative latency %v", ka.lastLatency())
	}
}
