package utils

import (
	"testing"
	"time"

	"rentacar-calendar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

	for _, s := range []string{"2024-03-01 09:30:00", "2024-03-01 09:30", "2024-03-01T09:30", "2024-03-01T09:30:00"} {
		got, err := ParseBookingTime(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	day, err := ParseBookingTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, day.Hour())

	_, err = ParseBookingTime("")
	assert.Error(t, err)
	_, err = ParseBookingTime("03/01/2024")
	assert.Error(t, err)
}

func TestFormatBookingTime(t *testing.T) {
	tm := time.Date(2024, 3, 1, 9, 30, 45, 0, time.Local)
	assert.Equal(t, "2024-03-01 09:30:00", FormatBookingTime(tm))
}

func TestMonthBounds(t *testing.T) {
	from, to, err := MonthBounds("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), to)
	assert.Len(t, DaysIn(from, to), 29)

	_, _, err = MonthBounds("2024-13")
	assert.Error(t, err)
}

func TestISOWeekBounds(t *testing.T) {
	t.Run("Week 1 of 2024 starts on New Year's Day", func(t *testing.T) {
		from, to, err := ISOWeekBounds(1, 2024)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), from)
		assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.Local), to)
	})

	t.Run("Week 1 of 2021 starts in the previous year", func(t *testing.T) {
		from, _, err := ISOWeekBounds(1, 2021)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.Local), from)
	})

	t.Run("Week 53 exists only in long years", func(t *testing.T) {
		from, _, err := ISOWeekBounds(53, 2020)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2020, 12, 28, 0, 0, 0, 0, time.Local), from)

		_, _, err = ISOWeekBounds(53, 2021)
		assert.Error(t, err)
	})

	t.Run("Round trips with time.ISOWeek", func(t *testing.T) {
		for week := 1; week <= 52; week++ {
			from, _, err := ISOWeekBounds(week, 2024)
			require.NoError(t, err)
			y, w := from.ISOWeek()
			assert.Equal(t, 2024, y)
			assert.Equal(t, week, w)
			assert.Equal(t, time.Monday, from.Weekday())
		}
	})
}

func TestWindowBounds(t *testing.T) {
	from, to, err := WindowBounds(domain.MonthWindow("2024-03"))
	require.NoError(t, err)
	assert.Equal(t, 31, len(DaysIn(from, to)))

	from, to, err = WindowBounds(domain.WeekWindow(10, 2024))
	require.NoError(t, err)
	assert.Equal(t, 7, len(DaysIn(from, to)))

	_, _, err = WindowBounds(domain.VisibleWindow{})
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestWindowContaining(t *testing.T) {
	tm := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	assert.Equal(t, domain.MonthWindow("2024-03"), WindowContaining(tm, false))
	assert.Equal(t, domain.WeekWindow(10, 2024), WindowContaining(tm, true))
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	day := 24 * time.Hour

	assert.True(t, Overlaps(base, base.Add(2*day), base.Add(day), base.Add(3*day)))
	assert.False(t, Overlaps(base, base.Add(day), base.Add(day), base.Add(2*day)))
	assert.True(t, Overlaps(base, base.Add(5*day), base.Add(day), base.Add(2*day)))
}
