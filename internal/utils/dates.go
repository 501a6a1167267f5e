package utils

import (
	"fmt"
	"strings"
	"time"

	"rentacar-calendar/internal/domain"
)

// BookingTimeLayout is the wire format the backend expects for start/end dates
const BookingTimeLayout = "2006-01-02 15:04:00"

var bookingTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseBookingTime parses the date-time formats the backend and the UI emit,
// interpreting zone-less values in local time
func ParseBookingTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range bookingTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// FormatBookingTime renders t as YYYY-MM-DD HH:MM:00 without any zone conversion
func FormatBookingTime(t time.Time) string {
	return t.Format(BookingTimeLayout)
}

// MonthBounds returns [first day 00:00, first day of next month 00:00) for YYYY-MM
func MonthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// ISOWeekBounds returns [Monday 00:00, next Monday 00:00) of an ISO-8601 week
func ISOWeekBounds(week, year int) (time.Time, time.Time, error) {
	if week < 1 || week > WeeksInISOYear(year) {
		return time.Time{}, time.Time{}, fmt.Errorf("week %d does not exist in ISO year %d", week, year)
	}
	// January 4th is always in week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.Local)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)
	return monday, monday.AddDate(0, 0, 7), nil
}

// WeeksInISOYear returns 52 or 53
func WeeksInISOYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.Local).ISOWeek()
	return w
}

// WindowBounds resolves a visible window to its half-open time range
func WindowBounds(w domain.VisibleWindow) (time.Time, time.Time, error) {
	if err := w.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if w.IsMonth() {
		return MonthBounds(w.Month)
	}
	return ISOWeekBounds(w.ISOWeek, w.ISOYear)
}

// WindowContaining returns the month or ISO week window that contains t
func WindowContaining(t time.Time, weekly bool) domain.VisibleWindow {
	if weekly {
		year, week := t.ISOWeek()
		return domain.WeekWindow(week, year)
	}
	return domain.MonthWindow(t.Format("2006-01"))
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DaysIn lists the midnight of every day in [from, to)
func DaysIn(from, to time.Time) []time.Time {
	var days []time.Time
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for day.Before(to) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}
