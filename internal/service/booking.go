package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/logger"
	"rentacar-calendar/internal/repository"
	"rentacar-calendar/internal/utils"
)

// QuoteRequest asks for a cost preview. Rates given here win over the
// car's catalog rates.
type QuoteRequest struct {
	CarID        domain.ID     `json:"car_id,omitempty"`
	RateType     string        `json:"rate_type,omitempty" validate:"omitempty,oneof=daily hourly"`
	DailyRate    domain.Amount `json:"daily_rate"`
	HourlyRate   domain.Amount `json:"hourly_rate"`
	StartDate    string        `json:"start_date" validate:"required"`
	EndDate      string        `json:"end_date" validate:"required"`
	ExtraPayment domain.Amount `json:"extra_payment"`
	Discount     domain.Amount `json:"discount"`
}

type bookingService struct {
	bookings repository.BookingRepository
	cars     repository.CarRepository
	bus      *events.Bus
	log      *slog.Logger
}

func NewBookingService(bookings repository.BookingRepository, cars repository.CarRepository, bus *events.Bus) BookingService {
	return &bookingService{
		bookings: bookings,
		cars:     cars,
		bus:      bus,
		log:      logger.WithComponent("booking_service"),
	}
}

func (s *bookingService) Quote(ctx context.Context, req *QuoteRequest) (*utils.RateQuantities, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	start, err := utils.ParseBookingTime(req.StartDate)
	if err != nil {
		return nil, fieldError("start_date", err.Error())
	}
	end, err := utils.ParseBookingTime(req.EndDate)
	if err != nil {
		return nil, fieldError("end_date", err.Error())
	}

	rates := utils.Rates{Daily: req.DailyRate.Float(), Hourly: req.HourlyRate.Float()}
	hint := ""
	if rates == (utils.Rates{}) && req.CarID != "" {
		car, err := s.findCar(ctx, req.CarID)
		if err != nil {
			return nil, err
		}
		rates = utils.RatesOf(car)
		hint = car.RateType
	}

	rateType, _ := utils.ParseRateType(req.RateType)
	q := utils.ComputeQuantities(rateType, rates, hint, start, end, req.ExtraPayment.Float(), req.Discount.Float())
	return &q, nil
}

func (s *bookingService) findCar(ctx context.Context, id domain.ID) (*domain.Car, error) {
	cars, err := s.cars.List(ctx, domain.FilterSet{})
	if err != nil {
		return nil, fmt.Errorf("failed to load cars: %w", err)
	}
	for i := range cars {
		if cars[i].ID == id {
			return &cars[i], nil
		}
	}
	return nil, fmt.Errorf("car %s: %w", id, domain.ErrNotFound)
}

// SubmitBooking creates a booking. Missing amounts are filled from a quote
// on the car's rates before the request goes out.
func (s *bookingService) SubmitBooking(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	logger.EnterMethod("BookingService.SubmitBooking", "car_id", req.CarID)

	if err := validateStruct(req); err != nil {
		logger.ExitMethodWithError("BookingService.SubmitBooking", err)
		return nil, err
	}
	start, err := utils.ParseBookingTime(req.StartDate)
	if err != nil {
		verr := fieldError("start_date", err.Error())
		logger.ExitMethodWithError("BookingService.SubmitBooking", verr)
		return nil, verr
	}
	end, err := utils.ParseBookingTime(req.EndDate)
	if err != nil {
		verr := fieldError("end_date", err.Error())
		logger.ExitMethodWithError("BookingService.SubmitBooking", verr)
		return nil, verr
	}
	if !end.After(start) {
		err := fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidRange)
		logger.ExitMethodWithError("BookingService.SubmitBooking", err)
		return nil, err
	}
	req.StartDate = utils.FormatBookingTime(start)
	req.EndDate = utils.FormatBookingTime(end)

	switch {
	case req.BaseAmount <= 0 && req.TotalAmount <= 0:
		q, err := s.Quote(ctx, &QuoteRequest{
			CarID:        req.CarID,
			RateType:     req.RateType,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			ExtraPayment: req.ExtraPayment,
			Discount:     req.Discount,
		})
		if err != nil {
			// the backend prices the booking itself when we cannot
			s.log.Warn("Submitting booking without a quote", "car_id", req.CarID, "error", err)
			break
		}
		req.RateType = string(q.RateType)
		req.BaseAmount = domain.Amount(q.BaseAmount)
		req.TotalAmount = domain.Amount(q.TotalAmount)
	case req.TotalAmount <= 0:
		req.TotalAmount = domain.Amount(utils.ComputeTotal(req.BaseAmount.Float(), req.ExtraPayment.Float(), req.Discount.Float()))
	}

	booking, err := s.bookings.Create(ctx, req)
	if err != nil {
		s.log.Error("Failed to create booking", "car_id", req.CarID, "error", err)
		s.toast(events.LevelError, "", "Could not create the booking: %v", err)
		logger.ExitMethodWithError("BookingService.SubmitBooking", err)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	fillFromRequest(booking, req)
	carID, status, total := booking.CarID, booking.Status, booking.TotalAmount
	startDate, endDate := booking.StartDate, booking.EndDate
	s.bus.BookingCreated.Publish(events.BookingChanged{
		BookingID: booking.ID,
		Changes: domain.BookingPatch{
			CarID:       &carID,
			StartDate:   &startDate,
			EndDate:     &endDate,
			Status:      &status,
			TotalAmount: &total,
		},
	})
	s.toast(events.LevelSuccess, booking.ID, "Booking %s created", booking.ID)
	logger.ExitMethod("BookingService.SubmitBooking", "booking_id", booking.ID)
	return booking, nil
}

// fillFromRequest covers backends that answer a create with a sparse body
func fillFromRequest(b *domain.Booking, req *domain.CreateBookingRequest) {
	if b.CarID == "" {
		b.CarID = req.CarID
	}
	if b.StartDate == "" {
		b.StartDate = req.StartDate
	}
	if b.EndDate == "" {
		b.EndDate = req.EndDate
	}
	if b.Status == "" {
		b.Status = req.Status
	}
	if b.TotalAmount == 0 {
		b.TotalAmount = req.TotalAmount
	}
	if b.FirstName == "" && b.LastName == "" {
		b.FirstName, b.MiddleName, b.LastName = req.FirstName, req.MiddleName, req.LastName
	}
}

func (s *bookingService) RecordPayment(ctx context.Context, bookingID domain.ID, req *domain.PaymentRequest) (*domain.Payment, error) {
	if bookingID == "" {
		return nil, domain.ErrMissingBookingID
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.PaidAt != "" {
		paidAt, err := utils.ParseBookingTime(req.PaidAt)
		if err != nil {
			return nil, fieldError("paid_at", err.Error())
		}
		req.PaidAt = utils.FormatBookingTime(paidAt)
	}

	payment, err := s.bookings.CreatePayment(ctx, bookingID, req)
	if err != nil {
		s.log.Error("Failed to record payment", "booking_id", bookingID, "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			s.toast(events.LevelError, bookingID, "Booking %s no longer exists", bookingID)
		} else {
			s.toast(events.LevelError, bookingID, "Could not record the payment: %v", err)
		}
		return nil, fmt.Errorf("record payment for booking %s: %w", bookingID, err)
	}

	var patch domain.BookingPatch
	if payment.PaymentStatus != "" {
		ps := payment.PaymentStatus
		patch.PaymentStatus = &ps
	}
	s.bus.BookingUpdated.Publish(events.BookingChanged{BookingID: bookingID, Changes: patch})
	s.toast(events.LevelSuccess, bookingID, "Payment recorded for booking %s", bookingID)
	return payment, nil
}

func (s *bookingService) toast(level events.Level, id domain.ID, format string, args ...any) {
	s.bus.Toast.Publish(events.Notification{Level: level, BookingID: id, Message: fmt.Sprintf(format, args...)})
}
