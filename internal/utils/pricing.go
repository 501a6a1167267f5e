package utils

import (
	"math"
	"strings"
	"time"

	"rentacar-calendar/internal/domain"
)

// RateType selects the billing unit of a booking
type RateType string

const (
	RateTypeDaily  RateType = "daily"
	RateTypeHourly RateType = "hourly"
)

// ParseRateType maps free text to a rate type, reporting whether it was recognised
func ParseRateType(s string) (RateType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "days", "per day":
		return RateTypeDaily, true
	case "hourly", "hour", "hours", "per hour":
		return RateTypeHourly, true
	}
	return "", false
}

// Rates holds the base rates of a car
type Rates struct {
	Daily  float64
	Hourly float64
}

// RatesOf extracts rates from a car, tolerating a nil car
func RatesOf(car *domain.Car) Rates {
	if car == nil {
		return Rates{}
	}
	return Rates{Daily: car.DailyRate.Float(), Hourly: car.HourlyRate.Float()}
}

// RateQuantities is the cost preview for a date range
type RateQuantities struct {
	RateType     RateType `json:"rate_type"`
	Quantity     int      `json:"quantity"`
	BaseRate     float64  `json:"base_rate"`
	BaseAmount   float64  `json:"base_amount"`
	ExtraPayment float64  `json:"extra_payment"`
	Discount     float64  `json:"discount"`
	TotalAmount  float64  `json:"total_amount"`
}

// Sanitize turns NaN, infinities and negatives into 0.
// Every numeric input of the cost preview passes through here.
func Sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}

// HoursBetween returns the elapsed hours rounded up, or 0 if either time is
// unset or end is not after start
func HoursBetween(start, end time.Time) int {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0
	}
	return int(math.Ceil(float64(end.Sub(start)) / float64(time.Hour)))
}

// DaysBetween returns HoursBetween divided by 24, rounded up
func DaysBetween(start, end time.Time) int {
	hours := HoursBetween(start, end)
	if hours == 0 {
		return 0
	}
	return int(math.Ceil(float64(hours) / 24))
}

// ChooseRateType prefers a positive daily rate, then a positive hourly rate,
// then the free-text hint, and defaults to daily
func ChooseRateType(rates Rates, hint string) RateType {
	if Sanitize(rates.Daily) > 0 {
		return RateTypeDaily
	}
	if Sanitize(rates.Hourly) > 0 {
		return RateTypeHourly
	}
	if strings.Contains(strings.ToLower(hint), "hour") {
		return RateTypeHourly
	}
	return RateTypeDaily
}

// ComputeTotal returns base + extra - discount, never below 0
func ComputeTotal(baseAmount, extraPayment, discount float64) float64 {
	total := Sanitize(baseAmount) + Sanitize(extraPayment) - Sanitize(discount)
	return Sanitize(total)
}

// ComputeQuantities prices a date range with the given rate type.
// An empty rate type is resolved with ChooseRateType.
func ComputeQuantities(rateType RateType, rates Rates, hint string, start, end time.Time, extraPayment, discount float64) RateQuantities {
	if rateType != RateTypeDaily && rateType != RateTypeHourly {
		rateType = ChooseRateType(rates, hint)
	}

	q := RateQuantities{
		RateType:     rateType,
		ExtraPayment: Sanitize(extraPayment),
		Discount:     Sanitize(discount),
	}
	switch rateType {
	case RateTypeHourly:
		q.Quantity = HoursBetween(start, end)
		q.BaseRate = Sanitize(rates.Hourly)
	default:
		q.Quantity = DaysBetween(start, end)
		q.BaseRate = Sanitize(rates.Daily)
	}
	q.BaseAmount = Sanitize(float64(q.Quantity) * q.BaseRate)
	q.TotalAmount = ComputeTotal(q.BaseAmount, q.ExtraPayment, q.Discount)
	return q
}
