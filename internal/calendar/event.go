package calendar

import (
	"fmt"
	"time"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/utils"
)

// BuildEvent maps a booking onto a calendar bar. Bookings without a usable
// start date cannot be placed and yield an error. A missing or inverted end
// falls back to start + fallback.
func BuildEvent(b domain.Booking, colors *ColorAssigner, fallback time.Duration) (domain.CalendarEvent, error) {
	if b.ID == "" {
		return domain.CalendarEvent{}, domain.ErrMissingBookingID
	}
	start, err := utils.ParseBookingTime(b.StartDate)
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	end, err := utils.ParseBookingTime(b.EndDate)
	if err != nil || !end.After(start) {
		end = start.Add(fallback)
	}

	carID := b.CarID
	if carID == "" && b.Car != nil {
		carID = b.Car.ID
	}

	return domain.CalendarEvent{
		ID:         b.ID,
		ResourceID: carID,
		Title:      EventTitle(b),
		Start:      start,
		End:        end,
		Color:      colors.ColorFor(carID, b.Car),
		Editable:   true,
		Booking:    b,
	}, nil
}

// EventTitle is the car label followed by the renter's name
func EventTitle(b domain.Booking) string {
	label := b.Car.Label()
	if label == "" && b.CarID != "" {
		label = "Car #" + string(b.CarID)
	}
	renter := b.RenterName()
	switch {
	case label == "":
		return renter
	case renter == "":
		return label
	}
	return label + " - " + renter
}

// EventInfo is the read-only summary shown when an event is clicked
type EventInfo struct {
	BookingID     domain.ID            `json:"booking_id"`
	CarLabel      string               `json:"car_label"`
	RenterName    string               `json:"renter_name"`
	Phone         string               `json:"phone,omitempty"`
	Email         string               `json:"email,omitempty"`
	Status        domain.BookingStatus `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status,omitempty"`
	Start         string               `json:"start"`
	End           string               `json:"end"`
	BaseAmount    float64              `json:"base_amount"`
	ExtraPayment  float64              `json:"extra_payment"`
	Discount      float64              `json:"discount"`
	TotalAmount   float64              `json:"total_amount"`
	Pending       bool                 `json:"pending"`
}

func infoFor(ev domain.CalendarEvent) EventInfo {
	b := ev.Booking
	total := b.TotalAmount.Float()
	if total == 0 {
		total = utils.ComputeTotal(b.BaseAmount.Float(), b.ExtraPayment.Float(), b.Discount.Float())
	}
	return EventInfo{
		BookingID:     ev.ID,
		CarLabel:      b.Car.Label(),
		RenterName:    b.RenterName(),
		Phone:         b.Phone,
		Email:         b.Email,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Start:         utils.FormatBookingTime(ev.Start),
		End:           utils.FormatBookingTime(ev.End),
		BaseAmount:    utils.Sanitize(b.BaseAmount.Float()),
		ExtraPayment:  utils.Sanitize(b.ExtraPayment.Float()),
		Discount:      utils.Sanitize(b.Discount.Float()),
		TotalAmount:   total,
		Pending:       ev.Pending,
	}
}
