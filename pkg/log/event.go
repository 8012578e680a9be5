package log

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// Event is a single log record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// ID uniquely identifies the event (UUID).
	ID string `cbor:"1,keyasint"`

	// RecordingID groups events produced by one run of one application.
	RecordingID string `cbor:"2,keyasint,omitempty"`

	// Time is when the event occurred, absolute or relative.
	Time logtime.Time `cbor:"3,keyasint"`

	// Source is a slash-separated path naming the producer ("app/net/http").
	Source string `cbor:"4,keyasint,omitempty"`

	// Level is the severity.
	Level Level `cbor:"5,keyasint"`

	// Text is the human-readable message.
	Text string `cbor:"6,keyasint,omitempty"`

	// Span is the length of the operation the event describes, if any.
	Span *logtime.Duration `cbor:"7,keyasint,omitempty"`

	// Fields carries structured key/value context (CBOR-compatible values).
	Fields map[string]any `cbor:"8,keyasint,omitempty"`
}

// NewEvent returns an Event with a fresh ID.
func NewEvent(at logtime.Time, level Level, source, text string) Event {
	return Event{
		ID:     uuid.New().String(),
		Time:   at,
		Source: source,
		Level:  level,
		Text:   text,
	}
}

// WithSpan returns a copy of e carrying the given span.
func (e Event) WithSpan(d logtime.Duration) Event {
	e.Span = &d
	return e
}

// Level is the severity of an event.
type Level uint8

const (
	// LevelTrace is the most verbose level.
	LevelTrace Level = 0
	// LevelDebug is diagnostic output.
	LevelDebug Level = 1
	// LevelInfo is normal operation.
	LevelInfo Level = 2
	// LevelWarn is a recoverable problem.
	LevelWarn Level = 3
	// LevelError is a failure.
	LevelError Level = 4
)

// Levels lists all levels from least to most severe.
var Levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s (must be trace, debug, info, warn, or error)", s)
	}
}
