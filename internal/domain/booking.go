package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusOngoing   BookingStatus = "Ongoing"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusOverdue   BookingStatus = "Overdue"
	BookingStatusReturned  BookingStatus = "Returned"
)

// IsTerminal reports whether the server treats the booking as immutable.
// The client never enforces this.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Blocks reports whether a booking in this status occupies its car.
func (s BookingStatus) Blocks() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusCompleted, BookingStatusReturned:
		return false
	}
	return true
}

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// ID identifies bookings, cars and payments. It accepts both JSON numbers
// and strings; the backend is not consistent.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Amount is a money value that never carries NaN, Inf or garbage.
// Strings such as "2000.00" are accepted; anything unparsable becomes 0.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

func (a Amount) Float() float64 { return float64(a) }

type Booking struct {
	ID            ID            `json:"id"`
	CarID         ID            `json:"car_id"`
	Car           *Car          `json:"car,omitempty"`
	FirstName     string        `json:"first_name"`
	MiddleName    string        `json:"middle_name,omitempty"`
	LastName      string        `json:"last_name"`
	Phone         string        `json:"phone,omitempty"`
	Email         string        `json:"email,omitempty"`
	Address       string        `json:"address,omitempty"`
	IDType        string        `json:"id_type,omitempty"`
	IDNumber      string        `json:"id_number,omitempty"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	BaseAmount    Amount        `json:"base_amount"`
	ExtraPayment  Amount        `json:"extra_payment"`
	Discount      Amount        `json:"discount"`
	TotalAmount   Amount        `json:"total_amount"`
}

func (b *Booking) RenterName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{b.FirstName, b.MiddleName, b.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// BookingPatch carries changed fields only. Nil means unchanged.
type BookingPatch struct {
	CarID         *ID            `json:"car_id,omitempty"`
	StartDate     *string        `json:"start_date,omitempty"`
	EndDate       *string        `json:"end_date,omitempty"`
	Status        *BookingStatus `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
	BaseAmount    *Amount        `json:"base_amount,omitempty"`
	ExtraPayment  *Amount        `json:"extra_payment,omitempty"`
	Discount      *Amount        `json:"discount,omitempty"`
	TotalAmount   *Amount        `json:"total_amount,omitempty"`
}

func (p BookingPatch) IsEmpty() bool {
	return p == BookingPatch{}
}

// Apply copies every set field of the patch onto the booking.
func (b *Booking) Apply(p BookingPatch) {
	if p.CarID != nil {
		b.CarID = *p.CarID
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.BaseAmount != nil {
		b.BaseAmount = *p.BaseAmount
	}
	if p.ExtraPayment != nil {
		b.ExtraPayment = *p.ExtraPayment
	}
	if p.Discount != nil {
		b.Discount = *p.Discount
	}
	if p.TotalAmount != nil {
		b.TotalAmount = *p.TotalAmount
	}
}

// Merge overlays the server's copy on top of the local snapshot. Empty
// server fields keep the local value so a sparse PUT response loses nothing.
func (b *Booking) Merge(server *Booking) {
	if server == nil {
		return
	}
	if server.CarID != "" {
		b.CarID = server.CarID
	}
	if server.Car != nil {
		b.Car = server.Car
	}
	mergeString(&b.FirstName, server.FirstName)
	mergeString(&b.MiddleName, server.MiddleName)
	mergeString(&b.LastName, server.LastName)
	mergeString(&b.Phone, server.Phone)
	mergeString(&b.Email, server.Email)
	mergeString(&b.Address, server.Address)
	mergeString(&b.IDType, server.IDType)
	mergeString(&b.IDNumber, server.IDNumber)
	mergeString(&b.StartDate, server.StartDate)
	mergeString(&b.EndDate, server.EndDate)
	if server.Status != "" {
		b.Status = server.Status
	}
	if server.PaymentStatus != "" {
		b.PaymentStatus = server.PaymentStatus
	}
	if server.BaseAmount != 0 {
		b.BaseAmount = server.BaseAmount
	}
	if server.ExtraPayment != 0 {
		b.ExtraPayment = server.ExtraPayment
	}
	if server.Discount != 0 {
		b.Discount = server.Discount
	}
	if server.TotalAmount != 0 {
		b.TotalAmount = server.TotalAmount
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

type CreateBookingRequest struct {
	CarID        ID            `json:"car_id" validate:"required"`
	FirstName    string        `json:"first_name" validate:"required,max=100"`
	MiddleName   string        `json:"middle_name,omitempty" validate:"max=100"`
	LastName     string        `json:"last_name" validate:"required,max=100"`
	Phone        string        `json:"phone" validate:"required,max=32"`
	Email        string        `json:"email,omitempty" validate:"omitempty,email"`
	Address      string        `json:"address,omitempty" validate:"max=255"`
	IDType       string        `json:"id_type,omitempty" validate:"max=64"`
	IDNumber     string        `json:"id_number,omitempty" validate:"max=64"`
	StartDate    string        `json:"start_date" validate:"required"`
	EndDate      string        `json:"end_date" validate:"required"`
	Status       BookingStatus `json:"status" validate:"required,oneof=Pending Ongoing Completed Cancelled Overdue Returned"`
	RateType     string        `json:"rate_type,omitempty" validate:"omitempty,oneof=daily hourly"`
	BaseAmount   Amount        `json:"base_amount"`
	ExtraPayment Amount        `json:"extra_payment"`
	Discount     Amount        `json:"discount"`
	TotalAmount  Amount        `json:"total_amount"`
}
