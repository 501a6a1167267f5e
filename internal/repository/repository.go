package repository

import (
	"context"

	"rentacar-calendar/internal/domain"
)

// BookingRepository is the server-owned booking store, reached over REST
type BookingRepository interface {
	ListByWindow(ctx context.Context, window domain.VisibleWindow) ([]domain.Booking, error)
	Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error)
	Update(ctx context.Context, id domain.ID, patch domain.BookingPatch) (*domain.Booking, error)
	CreatePayment(ctx context.Context, id domain.ID, req *domain.PaymentRequest) (*domain.Payment, error)
}

// CarRepository is the car/rate catalog
type CarRepository interface {
	List(ctx context.Context, filters domain.FilterSet) ([]domain.Car, error)
}

// FilterRepository persists the last applied topbar filter set
type FilterRepository interface {
	Load(ctx context.Context, key string) (*domain.FilterSet, error)
	Save(ctx context.Context, key string, filters domain.FilterSet) error
}
