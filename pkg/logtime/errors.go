package logtime

import (
	"errors"
	"fmt"
	"time"
)

// ErrBeforeEpoch indicates a clock reading earlier than the Unix epoch.
var ErrBeforeEpoch = errors.New("clock reading precedes the unix epoch")

// ClockError reports a clock reading that cannot be represented as a Time.
type ClockError struct {
	// Reading is the rejected clock value.
	Reading time.Time

	// Behind is how far the reading lies before the epoch.
	Behind time.Duration
}

func (e *ClockError) Error() string {
	return fmt.Sprintf("%v: %s is %s before the epoch", ErrBeforeEpoch, e.Reading.UTC().Format(time.RFC3339Nano), e.Behind)
}

// Unwrap returns ErrBeforeEpoch.
func (e *ClockError) Unwrap() error {
	return ErrBeforeEpoch
}

// IsClockError checks whether err is a ClockError and returns it.
func IsClockError(err error) (*ClockError, bool) {
	var ce *ClockError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
