package log

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// FileLogger appends events to a recording file as a CBOR sequence.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	mu sync.Mutex

	file *os.File
	buf  *bufio.Writer
	enc  *cbor.Encoder

	// recordingID is stamped on events that carry none.
	recordingID string

	written int
	dropped int
	covered logtime.Range
	closed  bool
}

// FileLoggerOption configures a FileLogger.
type FileLoggerOption func(*FileLogger)

// WithRecordingID stamps id on every logged event whose RecordingID is empty.
func WithRecordingID(id string) FileLoggerOption {
	return func(l *FileLogger) {
		l.recordingID = id
	}
}

// NewFileLogger opens path for appending, creating it with mode 0644 if
// needed. Existing events are kept.
func NewFileLogger(path string, opts ...FileLoggerOption) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}

	l := &FileLogger{file: f, buf: bufio.NewWriter(f)}
	l.enc = NewEncoder(l.buf)
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Log appends event to the recording. Events logged after Close are
// discarded. Encoding failures are counted, see Dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if event.RecordingID == "" {
		event.RecordingID = l.recordingID
	}

	if err := l.enc.Encode(event); err != nil {
		l.dropped++
		return
	}

	if l.written == 0 {
		l.covered = logtime.NewRange(event.Time, event.Time)
	} else if event.Time.Before(l.covered.Min) {
		l.covered.Min = event.Time
	} else if event.Time.After(l.covered.Max) {
		l.covered.Max = event.Time
	}
	l.written++
}

// Flush writes buffered events through to the file.
func (l *FileLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	return l.buf.Flush()
}

// Written returns the number of events appended by this logger.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Dropped returns the number of events that failed to encode.
func (l *FileLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Covered returns the earliest and latest event time written so far.
// ok is false until an event has been written.
func (l *FileLogger) Covered() (r logtime.Range, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.covered, l.written > 0
}

// Close flushes and closes the recording. It is safe to call more than once.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	flushErr := l.buf.Flush()
	if err := l.file.Close(); err != nil {
		return err
	}
	return flushErr
}

var _ Logger = (*FileLogger)(nil)
