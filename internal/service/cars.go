package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/logger"
	"rentacar-calendar/internal/repository"
	"rentacar-calendar/internal/utils"
)

// maxAvailabilityMonths bounds how many month windows an availability
// check may fetch.
const maxAvailabilityMonths = 24

// CarAvailability is one row of the car list.
type CarAvailability struct {
	Car       domain.Car  `json:"car"`
	Label     string      `json:"label"`
	Available bool        `json:"available"`
	Conflicts []domain.ID `json:"conflicts,omitempty"`
}

type carListService struct {
	cars     repository.CarRepository
	bookings repository.BookingRepository
	filters  FilterService
	log      *slog.Logger

	mu         sync.Mutex
	dateFilter *events.DateFilter
	unsub      func()
}

// NewCarListService returns the car list and subscribes it to date filters
// broadcast by the calendar.
func NewCarListService(cars repository.CarRepository, bookings repository.BookingRepository, filters FilterService, bus *events.Bus) CarListService {
	s := &carListService{
		cars:     cars,
		bookings: bookings,
		filters:  filters,
		log:      logger.WithComponent("car_list"),
	}
	s.unsub = bus.DateFilter.Subscribe(s.onDateFilter)
	return s
}

func (s *carListService) Close() { s.unsub() }

func (s *carListService) onDateFilter(f events.DateFilter) {
	s.mu.Lock()
	s.dateFilter = &f
	s.mu.Unlock()
	s.log.Info("Applied date filter", "start", f.Start, "end", f.End, "availability", f.Availability)
}

// CurrentFilters is the persisted filter set with the last broadcast date
// filter laid over it.
func (s *carListService) CurrentFilters(ctx context.Context) (domain.FilterSet, error) {
	set, err := s.filters.Load(ctx)
	if err != nil {
		return domain.FilterSet{}, err
	}
	s.mu.Lock()
	if f := s.dateFilter; f != nil {
		start, end := f.Start, f.End
		set.Start, set.End = &start, &end
		set.Availability = f.Availability
	}
	s.mu.Unlock()
	return set, nil
}

func (s *carListService) ApplyFilters(ctx context.Context, filters domain.FilterSet) (domain.FilterSet, error) {
	if err := s.filters.Save(ctx, filters); err != nil {
		return domain.FilterSet{}, err
	}
	s.mu.Lock()
	s.dateFilter = nil
	s.mu.Unlock()
	return filters, nil
}

// ListCars returns the catalog narrowed by the current filters. With a date
// range set, each car is checked against the bookings overlapping it.
func (s *carListService) ListCars(ctx context.Context) ([]CarAvailability, error) {
	set, err := s.CurrentFilters(ctx)
	if err != nil {
		return nil, err
	}
	cars, err := s.cars.List(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}

	var busy map[domain.ID][]domain.ID
	ranged := set.Start != nil && set.End != nil
	if ranged {
		busy, err = s.conflicts(ctx, *set.Start, *set.End)
		if err != nil {
			return nil, err
		}
	}

	out := make([]CarAvailability, 0, len(cars))
	for _, car := range cars {
		if !matchesFilters(&car, set) {
			continue
		}
		row := CarAvailability{Car: car, Label: car.Label(), Available: true}
		if ranged {
			row.Conflicts = busy[car.ID]
			row.Available = len(row.Conflicts) == 0
			switch set.Availability {
			case domain.AvailabilityAvailable:
				if !row.Available {
					continue
				}
			case domain.AvailabilityUnavailable:
				if row.Available {
					continue
				}
			}
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b CarAvailability) int {
		return strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
	})
	return out, nil
}

// conflicts maps car ids to the blocking bookings overlapping [start, end)
func (s *carListService) conflicts(ctx context.Context, start, end time.Time) (map[domain.ID][]domain.ID, error) {
	windows, err := monthsCovering(start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.ID]struct{})
	busy := make(map[domain.ID][]domain.ID)
	for _, w := range windows {
		bookings, err := s.bookings.ListByWindow(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("list bookings for %s: %w", w, err)
		}
		for _, b := range bookings {
			if _, dup := seen[b.ID]; dup || !b.Status.Blocks() {
				continue
			}
			seen[b.ID] = struct{}{}
			bStart, err := utils.ParseBookingTime(b.StartDate)
			if err != nil {
				continue
			}
			bEnd, err := utils.ParseBookingTime(b.EndDate)
			if err != nil || !bEnd.After(bStart) {
				bEnd = bStart.Add(24 * time.Hour)
			}
			if utils.Overlaps(bStart, bEnd, start, end) {
				carID := b.CarID
				if carID == "" && b.Car != nil {
					carID = b.Car.ID
				}
				busy[carID] = append(busy[carID], b.ID)
			}
		}
	}
	return busy, nil
}

func monthsCovering(start, end time.Time) ([]domain.VisibleWindow, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidRange)
	}
	var windows []domain.VisibleWindow
	m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for m.Before(end) {
		if len(windows) == maxAvailabilityMonths {
			return nil, fieldError("end", fmt.Sprintf("range spans more than %d months", maxAvailabilityMonths))
		}
		windows = append(windows, domain.MonthWindow(m.Format("2006-01")))
		m = m.AddDate(0, 1, 0)
	}
	return windows, nil
}

func matchesFilters(car *domain.Car, f domain.FilterSet) bool {
	if f.Gear != "" && !strings.EqualFold(strings.TrimSpace(car.Gear), strings.TrimSpace(f.Gear)) {
		return false
	}
	if f.Fuel != "" && !strings.EqualFold(strings.TrimSpace(car.Fuel), strings.TrimSpace(f.Fuel)) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(strings.TrimSpace(car.Brand), strings.TrimSpace(f.Brand)) {
		return false
	}
	if q := domain.NormalizeIdentity(f.Search); q != "" && !strings.Contains(car.Identity(), q) {
		return false
	}
	return true
}
