package service

import (
	"context"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/utils"
)

type BookingService interface {
	SubmitBooking(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error)
	RecordPayment(ctx context.Context, bookingID domain.ID, req *domain.PaymentRequest) (*domain.Payment, error)
	Quote(ctx context.Context, req *QuoteRequest) (*utils.RateQuantities, error)
}

type CarListService interface {
	ListCars(ctx context.Context) ([]CarAvailability, error)
	CurrentFilters(ctx context.Context) (domain.FilterSet, error)
	ApplyFilters(ctx context.Context, filters domain.FilterSet) (domain.FilterSet, error)
	Close()
}

type FilterService interface {
	Load(ctx context.Context) (domain.FilterSet, error)
	Save(ctx context.Context, filters domain.FilterSet) error
}
