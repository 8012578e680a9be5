package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes log events to an slog.Logger.
// Useful for development when you want to see events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// SlogLevel maps an event level onto the nearest slog level.
// Trace sits one step below slog's Debug.
func SlogLevel(l Level) slog.Level {
	switch l {
	case LevelTrace:
		return slog.LevelDebug - 4
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Log writes the event to the slog logger at the event's level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("event_id", event.ID),
		slog.String("at", event.Time.Format()),
	}

	if event.RecordingID != "" {
		attrs = append(attrs, slog.String("recording", event.RecordingID))
	}
	if event.Source != "" {
		attrs = append(attrs, slog.String("source", event.Source))
	}
	if event.Span != nil {
		attrs = append(attrs, slog.String("span", event.Span.ExactString()))
	}
	if len(event.Fields) > 0 {
		fields := make([]any, 0, len(event.Fields))
		for k, v := range event.Fields {
			fields = append(fields, slog.Any(k, v))
		}
		attrs = append(attrs, slog.Group("fields", fields...))
	}

	a.logger.LogAttrs(context.Background(), SlogLevel(event.Level), event.Text, attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
