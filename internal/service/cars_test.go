package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/repository/mocks"
	"rentacar-calendar/internal/service"
)

func ptr[T any](v T) *T { return &v }

func localTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	require.NoError(t, err)
	return v
}

func TestCarListService_ListCars(t *testing.T) {
	ctx := context.Background()

	march := []domain.Booking{
		{ID: "55", CarID: "7", StartDate: "2024-03-10 09:00:00", EndDate: "2024-03-12 09:00:00", Status: domain.BookingStatusOngoing},
		{ID: "56", CarID: "8", StartDate: "2024-03-10 09:00:00", EndDate: "2024-03-12 09:00:00", Status: domain.BookingStatusCancelled},
	}

	setup := func(t *testing.T, saved *domain.FilterSet) (service.CarListService, *mocks.MockCarRepo, *mocks.MockBookingRepo, *events.Bus) {
		cars := new(mocks.MockCarRepo)
		bookings := new(mocks.MockBookingRepo)
		filters := new(mocks.MockFilterRepo)
		if saved == nil {
			filters.On("Load", ctx, service.DefaultFilterKey).Return(nil, domain.ErrNotFound)
		} else {
			filters.On("Load", ctx, service.DefaultFilterKey).Return(saved, nil)
		}
		bus := events.NewBus()
		svc := service.NewCarListService(cars, bookings, service.NewFilterService(filters, ""), bus)
		t.Cleanup(svc.Close)
		return svc, cars, bookings, bus
	}

	t.Run("No range lists every matching car", func(t *testing.T) {
		svc, cars, bookings, _ := setup(t, &domain.FilterSet{Gear: "automatic"})
		cars.On("List", ctx, mock.Anything).Return(catalog(), nil).Once()

		rows, err := svc.ListCars(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Toyota Vios (ABC 123)", rows[0].Label)
		assert.True(t, rows[0].Available)
		bookings.AssertNotCalled(t, "ListByWindow", mock.Anything, mock.Anything)
	})

	t.Run("Date filter from the calendar narrows to available cars", func(t *testing.T) {
		svc, cars, bookings, bus := setup(t, nil)
		cars.On("List", ctx, mock.Anything).Return(catalog(), nil).Once()
		bookings.On("ListByWindow", ctx, domain.MonthWindow("2024-03")).Return(march, nil).Once()

		bus.DateFilter.Publish(events.DateFilter{
			Start:        localTime(t, "2024-03-11 00:00"),
			End:          localTime(t, "2024-03-13 00:00"),
			Availability: domain.AvailabilityAvailable,
		})

		rows, err := svc.ListCars(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.ID("8"), rows[0].Car.ID)
	})

	t.Run("Unavailable lists conflicts across months", func(t *testing.T) {
		svc, cars, bookings, bus := setup(t, nil)
		cars.On("List", ctx, mock.Anything).Return(catalog(), nil).Once()
		bookings.On("ListByWindow", ctx, domain.MonthWindow("2024-02")).Return([]domain.Booking{}, nil).Once()
		bookings.On("ListByWindow", ctx, domain.MonthWindow("2024-03")).Return(march, nil).Once()

		bus.DateFilter.Publish(events.DateFilter{
			Start:        localTime(t, "2024-02-20 00:00"),
			End:          localTime(t, "2024-03-11 00:00"),
			Availability: domain.AvailabilityUnavailable,
		})

		rows, err := svc.ListCars(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.ID("7"), rows[0].Car.ID)
		assert.Equal(t, []domain.ID{"55"}, rows[0].Conflicts)
		assert.False(t, rows[0].Available)
		bookings.AssertExpectations(t)
	})

	t.Run("Booking failure surfaces", func(t *testing.T) {
		svc, cars, bookings, bus := setup(t, nil)
		cars.On("List", ctx, mock.Anything).Return(catalog(), nil).Once()
		bookings.On("ListByWindow", ctx, mock.Anything).Return(nil, errors.New("timeout")).Once()

		bus.DateFilter.Publish(events.DateFilter{
			Start: localTime(t, "2024-03-11 00:00"),
			End:   localTime(t, "2024-03-13 00:00"),
		})
		_, err := svc.ListCars(ctx)
		assert.Error(t, err)
	})
}

func TestCarListService_ApplyFilters(t *testing.T) {
	ctx := context.Background()
	filters := new(mocks.MockFilterRepo)
	bus := events.NewBus()
	svc := service.NewCarListService(new(mocks.MockCarRepo), new(mocks.MockBookingRepo), service.NewFilterService(filters, "prefs"), bus)
	defer svc.Close()

	bus.DateFilter.Publish(events.DateFilter{
		Start:        localTime(t, "2024-03-11 00:00"),
		End:          localTime(t, "2024-03-13 00:00"),
		Availability: domain.AvailabilityAll,
	})

	set := domain.FilterSet{Fuel: "Diesel", Search: "city"}
	filters.On("Save", ctx, "prefs", set).Return(nil).Once()
	filters.On("Load", ctx, "prefs").Return(&set, nil).Once()

	_, err := svc.ApplyFilters(ctx, set)
	require.NoError(t, err)

	current, err := svc.CurrentFilters(ctx)
	require.NoError(t, err)
	assert.Nil(t, current.Start)
	assert.Equal(t, "Diesel", current.Fuel)

	_, err = svc.ApplyFilters(ctx, domain.FilterSet{Availability: "maybe"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.ApplyFilters(ctx, domain.FilterSet{
		Start: ptr(localTime(t, "2024-03-13 00:00")),
		End:   ptr(localTime(t, "2024-03-11 00:00")),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	filters.AssertExpectations(t)
}

func TestFilterService(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockFilterRepo)
	svc := service.NewFilterService(repo, "")

	repo.On("Load", ctx, "topbarFilters").Return(nil, domain.ErrNotFound).Once()
	set, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FilterSet{}, set)

	repo.On("Load", ctx, "topbarFilters").Return(nil, errors.New("corrupt")).Once()
	_, err = svc.Load(ctx)
	assert.Error(t, err)

	repo.On("Save", ctx, "topbarFilters", domain.FilterSet{Brand: "Honda"}).Return(nil).Once()
	assert.NoError(t, svc.Save(ctx, domain.FilterSet{Brand: "Honda"}))
	repo.AssertExpectations(t)
}
