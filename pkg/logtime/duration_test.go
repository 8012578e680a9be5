package logtime_test

import (
	"math"
	"testing"
	"time"

	"github.com/logview-io/logview-go/pkg/logtime"
	"github.com/stretchr/testify/assert"
)

func TestDurationExactString(t *testing.T) {
	tests := []struct {
		name  string
		nanos int64
		want  string
	}{
		{"zero", 0, "0s"},
		{"whole seconds", 5_000_000_000, "5s"},
		{"negative seconds", -5_000_000_000, "-5s"},
		{"minute", 60_000_000_000, "1m"},
		{"hour", 3_600_000_000_000, "1h"},
		{"day", 86_400_000_000_000, "1d"},
		{"day and second", 86_401_000_000_000, "1d 1s"},
		{"day and minute", 86_460_000_000_000, "1d 1m"},
		{"hour minute second", 3_661_000_000_000, "1h 1m 1s"},
		{"all units", 90_061_500_000_000, "1d 1h 1m 1.500s"},
		{"milliseconds", 1_000_000, "0.001s"},
		{"sub-millisecond", 1, "0.000s"},
		{"truncates to milliseconds", 1_234_567_890, "1.234s"},
		{"negative fraction", -1_500_000_000, "-1.500s"},
		{"minute and fraction", 60_250_000_000, "1m 0.250s"},
		{"max", math.MaxInt64, "106751d 23h 47m 16.854s"},
		{"min", math.MinInt64, "-106751d 23h 47m 16.854s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := logtime.DurationFromNanos(tt.nanos)
			assert.Equal(t, tt.want, d.ExactString())
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDurationNeg(t *testing.T) {
	assert.Equal(t, logtime.MaxDuration, logtime.DurationFromNanos(math.MinInt64).Neg())
	assert.True(t, logtime.DurationFromNanos(math.MinInt64).Neg().IsMax())
	assert.Equal(t, int64(-5), logtime.DurationFromNanos(5).Neg().Nanos())
	assert.Equal(t, int64(5), logtime.DurationFromNanos(-5).Neg().Nanos())
	assert.Equal(t, int64(0), logtime.DurationFromNanos(0).Neg().Nanos())
	assert.Equal(t, int64(-math.MaxInt64), logtime.MaxDuration.Neg().Nanos())
}

func TestDurationAbs(t *testing.T) {
	assert.Equal(t, int64(7), logtime.DurationFromNanos(-7).Abs().Nanos())
	assert.Equal(t, int64(7), logtime.DurationFromNanos(7).Abs().Nanos())
	assert.Equal(t, logtime.MaxDuration, logtime.DurationFromNanos(math.MinInt64).Abs())
}

func TestDurationConversions(t *testing.T) {
	assert.Equal(t, int64(1_500_000_000), logtime.DurationFromSeconds(1.5).Nanos())
	assert.Equal(t, int64(1_000_000), logtime.DurationFromSeconds(0.001).Nanos())
	assert.Equal(t, int64(-2_000_000_000), logtime.DurationFromSeconds(-2).Nanos())
	assert.Equal(t, int64(math.MaxInt64), logtime.DurationFromSeconds(1e30).Nanos())
	assert.Equal(t, int64(math.MinInt64), logtime.DurationFromSeconds(-1e30).Nanos())
	assert.Equal(t, int64(0), logtime.DurationFromSeconds(float32(math.NaN())).Nanos())

	d := logtime.DurationFromNanos(1_500_000_000)
	assert.InDelta(t, 1.5, d.Seconds(), 1e-12)
	assert.InDelta(t, float32(1.5), d.Seconds32(), 1e-6)

	assert.Equal(t, 90*time.Second, logtime.DurationFromStd(90*time.Second).Std())
	assert.Equal(t, int64(90_000_000_000), logtime.DurationFromStd(90*time.Second).Nanos())
}

func TestDurationAdd(t *testing.T) {
	assert.Equal(t, int64(3), logtime.DurationFromNanos(1).Add(logtime.DurationFromNanos(2)).Nanos())
	assert.Equal(t, int64(-1), logtime.DurationFromNanos(1).Add(logtime.DurationFromNanos(-2)).Nanos())
	assert.True(t, logtime.MaxDuration.Add(logtime.DurationFromNanos(1)).IsMax())
	assert.Equal(t, int64(math.MinInt64), logtime.DurationFromNanos(math.MinInt64).Add(logtime.DurationFromNanos(-1)).Nanos())
}

func TestDurationOrdering(t *testing.T) {
	short := logtime.DurationFromNanos(-1)
	long := logtime.DurationFromNanos(1)

	assert.Equal(t, -1, short.Compare(long))
	assert.Equal(t, 1, long.Compare(short))
	assert.Equal(t, 0, long.Compare(logtime.DurationFromNanos(1)))
	assert.Equal(t, 1, logtime.MaxDuration.Compare(long))
	assert.True(t, logtime.DurationFromNanos(3) == logtime.DurationFromNanos(3))
}

func TestTimeDifferenceIsDuration(t *testing.T) {
	start := logtime.FromSeconds(1_700_000_000)
	end := start.Add(logtime.DurationFromNanos(90_061_500_000_000))

	assert.Equal(t, "1d 1h 1m 1.500s", end.Sub(start).ExactString())
	assert.Equal(t, "-1d 1h 1m 1.500s", start.Sub(end).ExactString())
}
