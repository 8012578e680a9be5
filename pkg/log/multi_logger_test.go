package log

import (
	"testing"

	"github.com/logview-io/logview-go/pkg/logtime"
)

// mockLogger records events for testing
type mockLogger struct {
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)
	multi.Log(NewEvent(logtime.FromNanos(0), LevelInfo, "app", "hello"))

	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].Text != "hello" {
			t.Errorf("logger %d: Text = %q, want %q", i, mock.events[0].Text, "hello")
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()

	// Should not panic with empty logger list
	multi.Log(NewEvent(logtime.FromNanos(0), LevelInfo, "app", "hello"))
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(nil, mock, nil)

	multi.Log(NewEvent(logtime.FromNanos(0), LevelInfo, "app", "hello"))

	if len(multi.loggers) != 1 {
		t.Errorf("got %d loggers, want 1", len(multi.loggers))
	}
	if len(mock.events) != 1 {
		t.Errorf("got %d events, want 1", len(mock.events))
	}
}
