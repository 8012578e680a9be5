package log

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// Filter specifies criteria for filtering log events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// RecordingID filters by exact recording ID match.
	RecordingID string

	// SourcePrefix filters by source path prefix ("app/net" matches "app/net/http").
	SourcePrefix string

	// MinLevel filters out events below this severity.
	MinLevel *Level

	// TimeStart filters events at or after this time.
	TimeStart *logtime.Time

	// TimeEnd filters events before this time.
	TimeEnd *logtime.Time
}

// Matches returns true if the event matches all filter criteria.
func (f *Filter) Matches(event Event) bool {
	if f.RecordingID != "" && event.RecordingID != f.RecordingID {
		return false
	}
	if f.SourcePrefix != "" && !strings.HasPrefix(event.Source, f.SourcePrefix) {
		return false
	}
	if f.MinLevel != nil && event.Level < *f.MinLevel {
		return false
	}
	if f.TimeStart != nil && event.Time.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Time.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads log events from a CBOR-encoded recording file.
// It provides an iterator interface for streaming large files.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader creates a Reader that reads all events from the specified recording.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll reads every event in the recording that matches filter.
func ReadAll(path string, filter Filter) ([]Event, error) {
	r, err := NewFilteredReader(path, filter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}
