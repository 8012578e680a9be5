package logtime

import (
	"cmp"
	"math"
	"strconv"
	"strings"
	"time"
)

// Unit sizes used by the exact format.
const (
	nanosPerSecond   = 1_000_000_000
	nanosPerMilli    = 1_000_000
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Duration is a signed elapsed time with nanosecond resolution.
// The zero value is a zero-length duration.
type Duration struct {
	nanos int64
}

// MaxDuration is the largest representable Duration.
// It is used as the sentinel for an unbounded duration.
var MaxDuration = Duration{nanos: math.MaxInt64}

// DurationFromNanos returns a Duration of ns nanoseconds.
func DurationFromNanos(ns int64) Duration {
	return Duration{nanos: ns}
}

// DurationFromSeconds returns a Duration of secs seconds, rounded to the
// nearest nanosecond. Out-of-range values clamp to the int64 bounds.
func DurationFromSeconds(secs float32) Duration {
	return Duration{nanos: roundNanos(float64(secs * 1e9))}
}

// DurationFromStd converts a time.Duration.
func DurationFromStd(d time.Duration) Duration {
	return Duration{nanos: int64(d)}
}

// Nanos returns the duration as an integer nanosecond count.
func (d Duration) Nanos() int64 {
	return d.nanos
}

// Seconds32 returns the duration in seconds as a float32.
func (d Duration) Seconds32() float32 {
	return float32(d.nanos) * 1e-9
}

// Seconds returns the duration in seconds as a float64.
func (d Duration) Seconds() float64 {
	return float64(d.nanos) * 1e-9
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d.nanos)
}

// IsMax reports whether d is the MaxDuration sentinel.
func (d Duration) IsMax() bool {
	return d.nanos == math.MaxInt64
}

// Neg returns -d. The negation of the most negative Duration is not
// representable, so it returns MaxDuration instead.
func (d Duration) Neg() Duration {
	if d.nanos == math.MinInt64 {
		return MaxDuration
	}
	return Duration{nanos: -d.nanos}
}

// Abs returns the absolute value of d, saturating like Neg.
func (d Duration) Abs() Duration {
	if d.nanos < 0 {
		return d.Neg()
	}
	return d
}

// Add returns d+e, saturating at the Duration bounds.
func (d Duration) Add(e Duration) Duration {
	return Duration{nanos: addInt64(d.nanos, e.nanos)}
}

// Compare returns -1, 0 or +1 depending on whether d is shorter than,
// equal to, or longer than e.
func (d Duration) Compare(e Duration) int {
	return cmp.Compare(d.nanos, e.nanos)
}

// ExactString renders d as days, hours, minutes and seconds, e.g.
// "1d 1h 1m 1.500s". Only non-zero units are written, but at least one
// token always is ("0s"). Sub-second precision is capped at milliseconds.
func (d Duration) ExactString() string {
	var b strings.Builder

	total := d.nanos
	if total < 0 {
		b.WriteByte('-')
		total = d.Neg().nanos
	}

	wholeSeconds := total / nanosPerSecond
	subNanos := total - wholeSeconds*nanosPerSecond

	remaining := wholeSeconds
	wrote := false

	writeUnit := func(n int64, unit byte) {
		if wrote {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(n, 10))
		b.WriteByte(unit)
		wrote = true
	}

	if days := remaining / secondsPerDay; days > 0 {
		writeUnit(days, 'd')
		remaining -= days * secondsPerDay
	}
	if hours := remaining / secondsPerHour; hours > 0 {
		writeUnit(hours, 'h')
		remaining -= hours * secondsPerHour
	}
	if minutes := remaining / secondsPerMinute; minutes > 0 {
		writeUnit(minutes, 'm')
		remaining -= minutes * secondsPerMinute
	}

	if remaining > 0 || subNanos > 0 || !wrote {
		if wrote {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatInt(remaining, 10))
		if subNanos > 0 {
			// Millisecond precision, even when a finer remainder exists.
			ms := strconv.FormatInt(subNanos/nanosPerMilli, 10)
			b.WriteByte('.')
			b.WriteString(strings.Repeat("0", 3-len(ms)))
			b.WriteString(ms)
		}
		b.WriteByte('s')
	}

	return b.String()
}

// String returns ExactString.
func (d Duration) String() string {
	return d.ExactString()
}
