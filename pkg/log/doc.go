// Package log defines log records and the sinks that carry them.
//
// An Event is one log record: a level, a source path, a text, and the time it
// was produced as a logtime.Time. Events are what producers hand to a Logger
// and what viewers receive over the wire. This package is separate from
// operational logging (slog); Events are data, and the SlogAdapter exists to
// mirror them onto a console during development.
//
// # Basic Usage
//
//	// Console only
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Recording file
//	rec, _ := log.NewFileLogger("/var/log/app/session.lvr")
//
//	// Both
//	logger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), rec)
//
// # Times
//
// Event.Time may be a wall-clock time or an offset from the start of a
// recording. Both are logtime.Time values; logtime.Time.Format picks the
// rendering from the value itself.
//
// # File Format
//
// Recordings are a plain concatenation of CBOR-encoded Events with integer
// keys, conventionally using the .lvr extension. The logview CLI reads,
// filters, summarizes and exports them.
package log
