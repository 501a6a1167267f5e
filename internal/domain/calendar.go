package domain

import (
	"fmt"
	"regexp"
	"time"
)

type ViewMode string

const (
	ViewModeTimeline ViewMode = "timeline"
	ViewModeCalendar ViewMode = "calendar"
)

type CalendarEvent struct {
	ID         ID        `json:"id"`
	ResourceID ID        `json:"resource_id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Color      string    `json:"color"`
	Pending    bool      `json:"pending"`
	Editable   bool      `json:"editable"`
	Booking    Booking   `json:"booking"`
}

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityAll         Availability = "all"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityAll:
		return true
	}
	return false
}

// Point is the last pointer location, used to anchor popovers.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type DateSelectionRange struct {
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Availability Availability `json:"availability"`
	Anchor       Point        `json:"anchor"`
}

// BookingDraft is the pre-filled booking modal opened from a selection.
type BookingDraft struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CarID     ID     `json:"car_id,omitempty"`
}

type FilterSet struct {
	Gear         string       `json:"gear,omitempty"`
	Fuel         string       `json:"fuel,omitempty"`
	Brand        string       `json:"brand,omitempty"`
	Availability Availability `json:"availability,omitempty"`
	Search       string       `json:"search,omitempty"`
	Start        *time.Time   `json:"start,omitempty"`
	End          *time.Time   `json:"end,omitempty"`
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// VisibleWindow is either a month (YYYY-MM) or an ISO week of an ISO year.
type VisibleWindow struct {
	Month   string `json:"month,omitempty"`
	ISOWeek int    `json:"week,omitempty"`
	ISOYear int    `json:"year,omitempty"`
}

func MonthWindow(month string) VisibleWindow { return VisibleWindow{Month: month} }

func WeekWindow(week, year int) VisibleWindow { return VisibleWindow{ISOWeek: week, ISOYear: year} }

func (w VisibleWindow) IsMonth() bool { return w.Month != "" }

func (w VisibleWindow) Validate() error {
	if w.Month != "" {
		if w.ISOWeek != 0 || w.ISOYear != 0 {
			return fmt.Errorf("%w: month and week are mutually exclusive", ErrInvalidWindow)
		}
		if !monthPattern.MatchString(w.Month) {
			return fmt.Errorf("%w: month %q is not YYYY-MM", ErrInvalidWindow, w.Month)
		}
		return nil
	}
	if w.ISOWeek < 1 || w.ISOWeek > 53 {
		return fmt.Errorf("%w: week %d out of range", ErrInvalidWindow, w.ISOWeek)
	}
	if w.ISOYear < 1 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidWindow, w.ISOYear)
	}
	return nil
}

func (w VisibleWindow) String() string {
	if w.Month != "" {
		return w.Month
	}
	return fmt.Sprintf("%d-W%02d", w.ISOYear, w.ISOWeek)
}
