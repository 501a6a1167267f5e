package http

import (
	"rentacar-calendar/internal/calendar"
	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/utils"
)

type eventResponse struct {
	ID         domain.ID      `json:"id"`
	ResourceID domain.ID      `json:"resource_id"`
	Title      string         `json:"title"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Color      string         `json:"color"`
	Pending    bool           `json:"pending"`
	Editable   bool           `json:"editable"`
	Booking    domain.Booking `json:"booking"`
}

func mapEvent(ev domain.CalendarEvent) eventResponse {
	return eventResponse{
		ID:         ev.ID,
		ResourceID: ev.ResourceID,
		Title:      ev.Title,
		Start:      utils.FormatBookingTime(ev.Start),
		End:        utils.FormatBookingTime(ev.End),
		Color:      ev.Color,
		Pending:    ev.Pending,
		Editable:   ev.Editable,
		Booking:    ev.Booking,
	}
}

func mapEvents(evs []domain.CalendarEvent) []eventResponse {
	out := make([]eventResponse, 0, len(evs))
	for _, ev := range evs {
		out = append(out, mapEvent(ev))
	}
	return out
}

type resourceResponse struct {
	ID     domain.ID       `json:"id"`
	Label  string          `json:"label"`
	Color  string          `json:"color"`
	Events []eventResponse `json:"events"`
}

func mapResources(rows []calendar.Resource) []resourceResponse {
	out := make([]resourceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, resourceResponse{ID: r.ID, Label: r.Label, Color: r.Color, Events: mapEvents(r.Events)})
	}
	return out
}

type dayResponse struct {
	Date   string          `json:"date"`
	Events []eventResponse `json:"events"`
}

func mapDays(cells []calendar.DayCell) []dayResponse {
	out := make([]dayResponse, 0, len(cells))
	for _, c := range cells {
		out = append(out, dayResponse{Date: c.Date, Events: mapEvents(c.Events)})
	}
	return out
}

type selectionResponse struct {
	Start        string              `json:"start"`
	End          string              `json:"end"`
	Availability domain.Availability `json:"availability"`
	Anchor       domain.Point        `json:"anchor"`
}

func mapSelection(s domain.DateSelectionRange) selectionResponse {
	return selectionResponse{
		Start:        utils.FormatBookingTime(s.Start),
		End:          utils.FormatBookingTime(s.End),
		Availability: s.Availability,
		Anchor:       s.Anchor,
	}
}
