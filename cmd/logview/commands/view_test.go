package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.lvr")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}
	return path
}

// testEvents returns relative-time events so output does not depend on
// the current date.
func testEvents() []log.Event {
	mk := func(sec float64, level log.Level, source, text string) log.Event {
		e := log.NewEvent(logtime.FromSeconds(sec), level, source, text)
		e.RecordingID = "rec-1"
		return e
	}
	return []log.Event{
		mk(1, log.LevelDebug, "app/net/http", "request started"),
		mk(2.5, log.LevelInfo, "app/net", "listening").WithSpan(logtime.DurationFromNanos(1_500_000_000)),
		mk(4, log.LevelWarn, "app/db", "slow query").WithSpan(logtime.DurationFromNanos(61_000_000_000)),
		mk(7.25, log.LevelError, "app/net/http", "request failed"),
	}
}

func TestFormatEvent(t *testing.T) {
	event := log.NewEvent(logtime.FromSeconds(12.345), log.LevelInfo, "app/net", "connected").
		WithSpan(logtime.DurationFromNanos(90_061_500_000_000))
	event.Fields = map[string]any{"peer": "10.0.0.2", "attempt": 3}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.HasPrefix(output, "+12.345s INFO  app/net: connected (took 1d 1h 1m 1.500s)\n") {
		t.Errorf("unexpected header line: %q", output)
	}

	// Fields sorted by key
	attempt := strings.Index(output, "  attempt: 3\n")
	peer := strings.Index(output, "  peer: 10.0.0.2\n")
	if attempt < 0 || peer < 0 || attempt > peer {
		t.Errorf("expected sorted fields, got: %q", output)
	}
}

func TestFormatEventWithoutSource(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, log.NewEvent(logtime.FromSeconds(-3), log.LevelError, "", "boom"))

	if got, want := buf.String(), "-3.000s ERROR -: boom\n"; got != want {
		t.Errorf("formatEvent = %q, want %q", got, want)
	}
}

func TestRunView(t *testing.T) {
	path := createTestLogFile(t, testEvents())

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"request started", "listening (took 1.500s)", "slow query (took 1m 1s)", "request failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunViewWithFilter(t *testing.T) {
	path := createTestLogFile(t, testEvents())

	filter, err := BuildFilter("", "app/net", "info", "", "")
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "request started") {
		t.Error("debug event should be filtered out")
	}
	if strings.Contains(output, "slow query") {
		t.Error("app/db event should be filtered out")
	}
	if !strings.Contains(output, "listening") || !strings.Contains(output, "request failed") {
		t.Errorf("expected matching events, got:\n%s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "missing.lvr"), log.Filter{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildFilter(t *testing.T) {
	filter, err := BuildFilter("rec-1", "app", "warning", "1000", "2000")
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	if filter.RecordingID != "rec-1" || filter.SourcePrefix != "app" {
		t.Errorf("unexpected filter: %+v", filter)
	}
	if filter.MinLevel == nil || *filter.MinLevel != log.LevelWarn {
		t.Errorf("MinLevel = %v, want WARN", filter.MinLevel)
	}
	if filter.TimeStart == nil || filter.TimeStart.NanosSinceEpoch() != 1000 {
		t.Errorf("TimeStart = %v, want 1000ns", filter.TimeStart)
	}
	if filter.TimeEnd == nil || filter.TimeEnd.NanosSinceEpoch() != 2000 {
		t.Errorf("TimeEnd = %v, want 2000ns", filter.TimeEnd)
	}
}

func TestBuildFilterErrors(t *testing.T) {
	tests := []struct {
		name              string
		level, start, end string
	}{
		{"bad level", "loud", "", ""},
		{"bad start", "", "yesterday", ""},
		{"bad end", "", "", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildFilter("", "", tt.level, tt.start, tt.end); err == nil {
				t.Error("expected error")
			}
		})
	}
}
