// Package mocks provides testify mocks of the repository ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentacar-calendar/internal/domain"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) ListByWindow(ctx context.Context, window domain.VisibleWindow) ([]domain.Booking, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, id domain.ID, patch domain.BookingPatch) (*domain.Booking, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) CreatePayment(ctx context.Context, id domain.ID, req *domain.PaymentRequest) (*domain.Payment, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

// MockCarRepo
type MockCarRepo struct {
	mock.Mock
}

func (m *MockCarRepo) List(ctx context.Context, filters domain.FilterSet) ([]domain.Car, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Car), args.Error(1)
}

// MockFilterRepo
type MockFilterRepo struct {
	mock.Mock
}

func (m *MockFilterRepo) Load(ctx context.Context, key string) (*domain.FilterSet, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilterSet), args.Error(1)
}
func (m *MockFilterRepo) Save(ctx context.Context, key string, filters domain.FilterSet) error {
	args := m.Called(ctx, key, filters)
	return args.Error(0)
}
