package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/logview-io/logview-go/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// startRecordingServer serves testEvents from its backlog.
func startRecordingServer(t *testing.T) string {
	t.Helper()
	server := transport.NewServer(transport.ServerConfig{
		Address: "127.0.0.1:0",
		Backlog: 16,
	})
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() { server.Stop() })

	for _, e := range testEvents() {
		require.NoError(t, server.Broadcast(e))
	}
	return "tcp://" + server.Addr().String()
}

func TestRunConnectLimit(t *testing.T) {
	url := startRecordingServer(t)

	var out syncBuffer
	cfg := ConnectConfig{URL: url, Level: "info", Limit: 2}
	require.NoError(t, RunConnect(context.Background(), cfg, &out))

	output := out.String()
	assert.NotContains(t, output, "request started")
	assert.Contains(t, output, "+2.500s INFO  app/net: listening (took 1.500s)")
	assert.Contains(t, output, "+4.000s WARN  app/db: slow query (took 1m 1s)")
	assert.NotContains(t, output, "request failed")
}

func TestRunConnectCancelled(t *testing.T) {
	url := startRecordingServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer

	errCh := make(chan error, 1)
	go func() {
		errCh <- RunConnect(ctx, ConnectConfig{URL: url}, &out)
	}()

	waitFor(t, func() bool { return strings.Contains(out.String(), "request failed") })
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunConnect did not return after cancel")
	}
}

func TestRunConnectErrors(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, RunConnect(ctx, ConnectConfig{}, io.Discard), "missing URL")
	assert.ErrorIs(t, RunConnect(ctx, ConnectConfig{URL: "http://localhost:1"}, io.Discard), transport.ErrUnsupportedScheme)
	assert.Error(t, RunConnect(ctx, ConnectConfig{URL: "tcp://127.0.0.1:1", Level: "loud"}, io.Discard))
}

func TestLoadConnectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := `url: tcp://buildhost:9876
level: warn
source: app/net
interactive: true
limit: 10
ping_interval: 5000000000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConnectConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://buildhost:9876", cfg.URL)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "app/net", cfg.Source)
	assert.True(t, cfg.Interactive)
	assert.Equal(t, 10, cfg.Limit)
	require.NotNil(t, cfg.PingInterval)
	assert.Equal(t, "5s", cfg.PingInterval.ExactString())
	assert.Equal(t, 5*time.Second, cfg.clientConfig().KeepAlive.PingInterval)

	filter, err := cfg.Filter()
	require.NoError(t, err)
	assert.Equal(t, "app/net", filter.SourcePrefix)
	require.NotNil(t, filter.MinLevel)
}

func TestLoadConnectConfigErrors(t *testing.T) {
	_, err := LoadConnectConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ping_interval: soon\n"), 0644))
	_, err = LoadConnectConfig(path)
	assert.Error(t, err)
}

// scriptedInput feeds lines to a session, running before(line) first.
func scriptedInput(before func(line string), lines ...string) func() (string, error) {
	return func() (string, error) {
		if len(lines) == 0 {
			return "", io.EOF
		}
		line := lines[0]
		lines = lines[1:]
		if before != nil {
			before(line)
		}
		if line == "^C" {
			return "", readline.ErrInterrupt
		}
		return line, nil
	}
}

func TestSessionConnectsAndQuits(t *testing.T) {
	url := startRecordingServer(t)

	var out syncBuffer
	s := newSession(ConnectConfig{}, &out)

	waitBeforeQuit := func(line string) {
		if line == "status" {
			waitFor(t, func() bool { return strings.Contains(out.String(), "request failed") })
		}
	}
	require.NoError(t, s.run(context.Background(), scriptedInput(waitBeforeQuit, url, "^C", "status", "quit")))

	output := out.String()
	assert.Contains(t, output, "Viewer Commands:")
	assert.Contains(t, output, "Connected to 127.0.0.1:")
	assert.Contains(t, output, "Received: 4")
	assert.Contains(t, output, "(4 events)")
	assert.Contains(t, output, "Exiting...")
	assert.Nil(t, s.conn)
}

func TestSessionFilterAppliesOnReconnect(t *testing.T) {
	url := startRecordingServer(t)

	var out syncBuffer
	s := newSession(ConnectConfig{URL: url}, &out)

	lines := []string{"level error", "status"}
	// The replayed backlog ends with the error event.
	waitForFiltered := func(line string) {
		want := 1
		if line == "status" {
			want = 2
		}
		waitFor(t, func() bool { return strings.Count(out.String(), "request failed") == want })
	}
	require.NoError(t, s.run(context.Background(), scriptedInput(waitForFiltered, lines...)))

	output := out.String()
	assert.Contains(t, output, "Filter: level=error source=any")
	// First connection shows everything, the reconnect only the error.
	assert.Equal(t, 1, strings.Count(output, "request started"))
	assert.Equal(t, 1, strings.Count(output, "slow query"))
}

func TestSessionRejectsBadInput(t *testing.T) {
	var out syncBuffer
	s := newSession(ConnectConfig{}, &out)

	require.NoError(t, s.run(context.Background(), scriptedInput(nil,
		"status",
		"http://localhost:1",
		"level loud",
		"foo bar",
		"close",
	)))

	output := out.String()
	assert.Contains(t, output, "Not connected")
	assert.Contains(t, output, "unsupported address scheme")
	assert.Contains(t, output, "invalid level")
	assert.Contains(t, output, "Unknown command: foo")
	assert.Contains(t, output, "Exiting...")
}
