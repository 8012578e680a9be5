package logtime

import (
	"cmp"
	"fmt"
	"math"
	"time"
)

// Display layouts for absolute times.
const (
	layoutTimeOfDay = "15:04:05.000000Z"
	layoutDateTime  = "2006-01-02 15:04:05.000000Z"
)

// Plausible wall-clock window, in whole 365-day years since the epoch.
const (
	minAbsoluteYears = 50
	maxAbsoluteYears = 150
)

var (
	unixEpoch     = time.Unix(0, 0).UTC()
	latestReading = time.Unix(0, math.MaxInt64).UTC()
)

// now is the clock Format uses to locate "today".
var now = time.Now

// Time is a point in time stored as nanoseconds since the Unix epoch.
// The zero value is the epoch itself.
type Time struct {
	nanos int64
}

// FromNanos returns the Time ns nanoseconds after the epoch.
func FromNanos(ns int64) Time {
	return Time{nanos: ns}
}

// FromMicros returns the Time us microseconds after the epoch.
// Values that overflow the nanosecond range clamp to the int64 bounds.
func FromMicros(us int64) Time {
	return Time{nanos: mulInt64Sat(us, 1_000)}
}

// FromSeconds returns the Time secs seconds after the epoch, rounded to the
// nearest nanosecond. Out-of-range values clamp to the int64 bounds.
func FromSeconds(secs float64) Time {
	return Time{nanos: roundNanos(secs * 1e9)}
}

// FromSystemTime converts a clock reading. It fails with a *ClockError if the
// reading precedes the Unix epoch. Readings past the int64 nanosecond range
// saturate.
func FromSystemTime(t time.Time) (Time, error) {
	if t.Before(unixEpoch) {
		return Time{}, &ClockError{Reading: t, Behind: unixEpoch.Sub(t)}
	}
	if t.After(latestReading) {
		return Time{nanos: math.MaxInt64}, nil
	}
	return Time{nanos: t.UnixNano()}, nil
}

// NanosSinceEpoch returns the raw nanosecond count.
func (t Time) NanosSinceEpoch() int64 {
	return t.nanos
}

// Std converts to a UTC time.Time.
func (t Time) Std() time.Time {
	return time.Unix(0, t.nanos).UTC()
}

// Sub returns t-u, saturating at the Duration bounds.
func (t Time) Sub(u Time) Duration {
	return Duration{nanos: subInt64Sat(t.nanos, u.nanos)}
}

// Add returns t+d, saturating at the Time bounds.
func (t Time) Add(d Duration) Time {
	return Time{nanos: addInt64(t.nanos, d.nanos)}
}

// Advance moves t forward by d in place, saturating at the Time bounds.
func (t *Time) Advance(d Duration) {
	t.nanos = addInt64(t.nanos, d.nanos)
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to,
// or after u.
func (t Time) Compare(u Time) int {
	return cmp.Compare(t.nanos, u.nanos)
}

// Before reports whether t is before u.
func (t Time) Before(u Time) bool {
	return t.nanos < u.nanos
}

// After reports whether t is after u.
func (t Time) After(u Time) bool {
	return t.nanos > u.nanos
}

// Equal reports whether t and u are the same instant.
func (t Time) Equal(u Time) bool {
	return t.nanos == u.nanos
}

// yearsSinceEpoch counts whole 365-day years. It is not calendar accurate.
func (t Time) yearsSinceEpoch() int64 {
	return t.nanos / nanosPerSecond / 60 / 60 / 24 / 365
}

// IsAbsolute reports whether t falls in the window Format renders as a
// wall-clock date (50 to 150 years after the epoch). Other values are
// treated as relative offsets.
func (t Time) IsAbsolute() bool {
	years := t.yearsSinceEpoch()
	return minAbsoluteYears <= years && years <= maxAbsoluteYears
}

// Format renders t for display, using the current UTC date to decide
// whether the date part can be left out. See FormatAt.
func (t Time) Format() string {
	return t.FormatAt(now())
}

// FormatAt renders t for display relative to the given current time.
//
// Absolute times render in UTC with microsecond precision: time of day only
// when t falls on the same UTC date as current, date and time otherwise.
// Relative times render as signed seconds with three decimals ("+12.345s").
func (t Time) FormatAt(current time.Time) string {
	if !t.IsAbsolute() {
		return fmt.Sprintf("%+.3fs", float64(t.nanos)*1e-9)
	}

	dt := t.Std()
	today := current.UTC()
	if dt.Year() == today.Year() && dt.YearDay() == today.YearDay() {
		return dt.Format(layoutTimeOfDay)
	}
	return dt.Format(layoutDateTime)
}

// String returns Format.
func (t Time) String() string {
	return t.Format()
}

// Range is an inclusive span of time from Min to Max.
type Range struct {
	Min Time
	Max Time
}

// NewRange returns the range [lo, hi].
func NewRange(lo, hi Time) Range {
	return Range{Min: lo, Max: hi}
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t Time) bool {
	return !t.Before(r.Min) && !t.After(r.Max)
}

// Span returns Max-Min, saturating.
func (r Range) Span() Duration {
	return r.Max.Sub(r.Min)
}

// Lerp interpolates linearly between r.Min (t=0) and r.Max (t=1), rounding
// to the nearest nanosecond. t outside [0, 1] extrapolates; the result
// saturates at the Time bounds.
func Lerp(r Range, t float32) Time {
	switch t {
	case 0:
		return r.Min
	case 1:
		return r.Max
	}

	var span float64
	if diff, overflow := subInt64(r.Max.nanos, r.Min.nanos); overflow {
		span = float64(r.Max.nanos) - float64(r.Min.nanos)
	} else {
		span = float64(diff)
	}

	offset := math.Round(span * float64(t))
	if math.IsNaN(offset) {
		return r.Min
	}
	if offset >= -math.MinInt64 || offset < math.MinInt64 {
		// The offset alone leaves int64; add in float so a negative Min
		// can still pull it back, then clamp.
		return Time{nanos: roundNanos(float64(r.Min.nanos) + offset)}
	}
	return r.Min.Add(Duration{nanos: int64(offset)})
}
