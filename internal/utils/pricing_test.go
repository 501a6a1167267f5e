package utils

import (
	"math"
	"testing"
	"time"

	"rentacar-calendar/internal/domain"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := ParseBookingTime(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tm
}

func TestHoursBetween(t *testing.T) {
	start := time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local)

	t.Run("Whole hours", func(t *testing.T) {
		assert.Equal(t, 4, HoursBetween(start, start.Add(4*time.Hour)))
	})

	t.Run("Partial hour rounds up", func(t *testing.T) {
		assert.Equal(t, 1, HoursBetween(start, start.Add(time.Minute)))
		assert.Equal(t, 3, HoursBetween(start, start.Add(2*time.Hour+time.Second)))
	})

	t.Run("End equal to start", func(t *testing.T) {
		assert.Equal(t, 0, HoursBetween(start, start))
	})

	t.Run("End before start", func(t *testing.T) {
		assert.Equal(t, 0, HoursBetween(start, start.Add(-time.Hour)))
	})

	t.Run("Invalid dates", func(t *testing.T) {
		assert.Equal(t, 0, HoursBetween(time.Time{}, start))
		assert.Equal(t, 0, HoursBetween(start, time.Time{}))
	})

	t.Run("Matches ceil of milliseconds", func(t *testing.T) {
		for _, d := range []time.Duration{1, 999 * time.Millisecond, 3600001 * time.Millisecond, 49 * time.Hour} {
			want := int(math.Ceil(float64(d.Milliseconds()) / 3600000))
			if d < time.Millisecond {
				want = 1
			}
			assert.Equal(t, want, HoursBetween(start, start.Add(d)), "duration %s", d)
		}
	})
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{"Zero length", start, 0},
		{"One hour", start.Add(time.Hour), 1},
		{"Exactly one day", start.Add(24 * time.Hour), 1},
		{"Day and an hour", start.Add(25 * time.Hour), 2},
		{"Two days", start.Add(48 * time.Hour), 2},
		{"Backwards", start.Add(-48 * time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(start, tt.end))
		})
	}
}

func TestChooseRateType(t *testing.T) {
	t.Run("Prefers daily", func(t *testing.T) {
		assert.Equal(t, RateTypeDaily, ChooseRateType(Rates{Daily: 1000, Hourly: 150}, "hourly"))
	})

	t.Run("Falls back to hourly", func(t *testing.T) {
		assert.Equal(t, RateTypeHourly, ChooseRateType(Rates{Hourly: 150}, ""))
	})

	t.Run("Uses hint", func(t *testing.T) {
		assert.Equal(t, RateTypeHourly, ChooseRateType(Rates{}, "Per Hour"))
		assert.Equal(t, RateTypeDaily, ChooseRateType(Rates{}, "per day"))
	})

	t.Run("Ignores non-finite rates", func(t *testing.T) {
		assert.Equal(t, RateTypeHourly, ChooseRateType(Rates{Daily: math.NaN(), Hourly: 10}, ""))
		assert.Equal(t, RateTypeDaily, ChooseRateType(Rates{Daily: -5}, ""))
	})
}

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, 2000.0, ComputeTotal(2000, 0, 0))
	assert.Equal(t, 2150.0, ComputeTotal(2000, 250, 100))
	assert.Equal(t, 0.0, ComputeTotal(100, 0, 500))
	assert.Equal(t, 100.0, ComputeTotal(100, math.NaN(), math.Inf(1)))
	assert.Equal(t, 0.0, ComputeTotal(-100, -5, 0))
}

func TestComputeQuantities(t *testing.T) {
	t.Run("Daily booking", func(t *testing.T) {
		start := mustTime(t, "2024-03-01 09:00:00")
		end := mustTime(t, "2024-03-03 09:00:00")

		assert.Equal(t, 2, DaysBetween(start, end))
		q := ComputeQuantities(RateTypeDaily, Rates{Daily: 1000}, "", start, end, 0, 0)
		assert.Equal(t, 2, q.Quantity)
		assert.Equal(t, 2000.0, q.BaseAmount)
		assert.Equal(t, 2000.0, q.TotalAmount)
		assert.Equal(t, ComputeTotal(2*1000, 0, 0), q.TotalAmount)
	})

	t.Run("Hourly selection", func(t *testing.T) {
		start := mustTime(t, "2024-03-10T10:00")
		end := mustTime(t, "2024-03-10T14:00")

		q := ComputeQuantities(RateTypeHourly, Rates{Daily: 1000, Hourly: 150}, "", start, end, 0, 0)
		assert.Equal(t, RateTypeHourly, q.RateType)
		assert.Equal(t, 4, q.Quantity)
		assert.Equal(t, 600.0, q.TotalAmount)
	})

	t.Run("Resolves empty rate type", func(t *testing.T) {
		start := mustTime(t, "2024-03-10 10:00:00")
		q := ComputeQuantities("", Rates{Hourly: 100}, "", start, start.Add(90*time.Minute), 50, 20)
		assert.Equal(t, RateTypeHourly, q.RateType)
		assert.Equal(t, 2, q.Quantity)
		assert.Equal(t, 230.0, q.TotalAmount)
	})

	t.Run("Invalid range costs nothing", func(t *testing.T) {
		start := mustTime(t, "2024-03-10 10:00:00")
		q := ComputeQuantities(RateTypeDaily, Rates{Daily: 1000}, "", start, start, 0, 0)
		assert.Equal(t, 0, q.Quantity)
		assert.Equal(t, 0.0, q.TotalAmount)
	})
}

func TestRatesOf(t *testing.T) {
	assert.Equal(t, Rates{}, RatesOf(nil))
	car := &domain.Car{DailyRate: 1200, HourlyRate: 90}
	assert.Equal(t, Rates{Daily: 1200, Hourly: 90}, RatesOf(car))
}

func TestParseRateType(t *testing.T) {
	rt, ok := ParseRateType(" Hourly ")
	assert.True(t, ok)
	assert.Equal(t, RateTypeHourly, rt)

	_, ok = ParseRateType("weekly")
	assert.False(t, ok)
}
