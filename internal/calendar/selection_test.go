package calendar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/repository/mocks"
)

func TestPanel_Selection(t *testing.T) {
	p, _, _, _ := newLoadedPanel(t)
	start, end := at(t, "2024-03-10 00:00"), at(t, "2024-03-13 00:00")

	_, err := p.OnRangeSelect(end, start, domain.Point{})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	sel, err := p.OnRangeSelect(start, end, domain.Point{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityAvailable, sel.Availability)
	assert.Equal(t, domain.Point{X: 10, Y: 20}, sel.Anchor)

	sel, err = p.SetSelectionAvailability(domain.AvailabilityUnavailable)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityUnavailable, sel.Availability)

	_, err = p.SetSelectionAvailability("sometimes")
	assert.ErrorIs(t, err, domain.ErrValidation)

	p.CloseSelection()
	_, ok := p.Selection()
	assert.False(t, ok)

	_, err = p.SetSelectionAvailability(domain.AvailabilityAll)
	assert.ErrorIs(t, err, domain.ErrNoSelection)
}

func TestPanel_CreateBookingFromSelection(t *testing.T) {
	p, _, _, _ := newLoadedPanel(t)

	_, err := p.CreateBookingFromSelection()
	assert.ErrorIs(t, err, domain.ErrNoSelection)

	p.Focus(events.CarFocus{CarID: "7"})
	_, err = p.OnRangeSelect(at(t, "2024-03-10 00:00"), at(t, "2024-03-13 00:00"), domain.Point{})
	require.NoError(t, err)

	draft, err := p.CreateBookingFromSelection()
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDraft{
		StartDate: "2024-03-10 00:00:00",
		EndDate:   "2024-03-13 00:00:00",
		CarID:     "7",
	}, draft)

	_, ok := p.Selection()
	assert.False(t, ok)
}

func TestPanel_ShowAvailableCars(t *testing.T) {
	ctx := context.Background()
	start, end := at(t, "2024-03-10 00:00"), at(t, "2024-03-13 00:00")

	newPanel := func(filters *mocks.MockFilterRepo) (*Panel, *events.Bus, *toastRecorder) {
		repo := new(mocks.MockBookingRepo)
		bus := events.NewBus()
		toasts := &toastRecorder{}
		bus.Toast.Subscribe(toasts.record)
		p := NewPanel(repo, filters, bus, nil, Options{FilterKey: "topbarFilters"})
		t.Cleanup(p.Close)
		return p, bus, toasts
	}

	t.Run("persists and broadcasts", func(t *testing.T) {
		filters := new(mocks.MockFilterRepo)
		filters.On("Load", ctx, "topbarFilters").Return(&domain.FilterSet{Gear: "Automatic"}, nil).Once()
		filters.On("Save", ctx, "topbarFilters", mock.MatchedBy(func(f domain.FilterSet) bool {
			return f.Gear == "Automatic" && f.Availability == domain.AvailabilityAll &&
				f.Start.Equal(start) && f.End.Equal(end)
		})).Return(nil).Once()

		p, bus, toasts := newPanel(filters)
		var got []events.DateFilter
		bus.DateFilter.Subscribe(func(f events.DateFilter) { got = append(got, f) })

		_, err := p.OnRangeSelect(start, end, domain.Point{})
		require.NoError(t, err)
		_, err = p.SetSelectionAvailability(domain.AvailabilityAll)
		require.NoError(t, err)

		f, err := p.ShowAvailableCars(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.AvailabilityAll, f.Availability)
		require.Len(t, got, 1)
		assert.Equal(t, f, got[0])
		assert.Empty(t, toasts.levels())

		_, ok := p.Selection()
		assert.False(t, ok)
		filters.AssertExpectations(t)
	})

	t.Run("first save starts from empty filters", func(t *testing.T) {
		filters := new(mocks.MockFilterRepo)
		filters.On("Load", ctx, "topbarFilters").Return(nil, domain.ErrNotFound).Once()
		filters.On("Save", ctx, "topbarFilters", mock.MatchedBy(func(f domain.FilterSet) bool {
			return f.Gear == "" && f.Availability == domain.AvailabilityAvailable
		})).Return(nil).Once()

		p, _, _ := newPanel(filters)
		_, err := p.OnRangeSelect(start, end, domain.Point{})
		require.NoError(t, err)
		_, err = p.ShowAvailableCars(ctx)
		require.NoError(t, err)
		filters.AssertExpectations(t)
	})

	t.Run("persistence failure still broadcasts", func(t *testing.T) {
		filters := new(mocks.MockFilterRepo)
		filters.On("Load", ctx, "topbarFilters").Return(nil, domain.ErrNotFound).Once()
		filters.On("Save", ctx, "topbarFilters", mock.Anything).Return(errors.New("disk full")).Once()

		p, bus, toasts := newPanel(filters)
		broadcast := 0
		bus.DateFilter.Subscribe(func(events.DateFilter) { broadcast++ })

		_, err := p.OnRangeSelect(start, end, domain.Point{})
		require.NoError(t, err)
		_, err = p.ShowAvailableCars(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, broadcast)
		assert.Equal(t, []events.Level{events.LevelWarning}, toasts.levels())
	})

	t.Run("no selection", func(t *testing.T) {
		p, _, _ := newPanel(nil)
		_, err := p.ShowAvailableCars(ctx)
		assert.ErrorIs(t, err, domain.ErrNoSelection)
	})
}
