// Package logtime provides the time value types used by log records.
//
// Two types are defined, both a single int64 nanosecond count:
//   - Time: an absolute point in time, nanoseconds since the Unix epoch
//   - Duration: a signed elapsed time, in nanoseconds
//
// # Saturating Arithmetic
//
// Arithmetic between Time and Duration never wraps and never panics.
// Results that do not fit in an int64 are clamped to the nearest bound:
//
//	t := logtime.FromNanos(math.MaxInt64)
//	t.Add(logtime.DurationFromNanos(1)) // still math.MaxInt64
//
// Negating the most negative Duration yields MaxDuration, the sentinel
// used for "unbounded".
//
// # Absolute vs. Relative Times
//
// The same Time type carries both wall-clock timestamps and offsets such as
// "seconds since the start of a recording". Format tells them apart with a
// plausible-year test: values 50 to 150 years after the epoch render as a
// UTC date-time, everything else renders as signed seconds:
//
//	12:30:45.123456Z              (same UTC day as now)
//	2024-06-15 12:30:45.123456Z   (another day)
//	+12.345s                      (relative)
//
// The year thresholds are part of the output format and must not change.
// Use IsAbsolute to make the distinction explicit at a call site.
//
// # Serialization
//
// Both types encode as one signed 64-bit integer in CBOR, JSON and YAML, so
// values round-trip exactly through any of them.
package logtime
