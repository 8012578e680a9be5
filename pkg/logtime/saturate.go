package logtime

import "math"

// addInt64 returns a+b clamped to the int64 range.
func addInt64(a, b int64) int64 {
	c := a + b
	if (c > a) == (b > 0) {
		return c
	}
	if b > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}

// subInt64 returns a-b and whether the exact result overflowed int64.
func subInt64(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) != (b > 0)
}

// subInt64Sat returns a-b clamped to the int64 range.
func subInt64Sat(a, b int64) int64 {
	c, overflow := subInt64(a, b)
	if !overflow {
		return c
	}
	if b > 0 {
		return math.MinInt64
	}
	return math.MaxInt64
}

// mulInt64Sat returns a*m clamped to the int64 range. m must be positive.
func mulInt64Sat(a, m int64) int64 {
	switch {
	case a > math.MaxInt64/m:
		return math.MaxInt64
	case a < math.MinInt64/m:
		return math.MinInt64
	}
	return a * m
}

// roundNanos rounds f half away from zero and converts it to int64.
// Values outside the int64 range clamp to the nearest bound; NaN is 0.
func roundNanos(f float64) int64 {
	r := math.Round(f)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= math.MaxInt64:
		return math.MaxInt64
	case r <= math.MinInt64:
		return math.MinInt64
	}
	return int64(r)
}
