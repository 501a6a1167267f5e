package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/utils"
)

// OnRangeSelect opens the selection popover for [start, end) at anchor.
// Availability starts out as "available".
func (p *Panel) OnRangeSelect(start, end time.Time, anchor domain.Point) (domain.DateSelectionRange, error) {
	if start.IsZero() {
		return domain.DateSelectionRange{}, domain.ErrMissingStart
	}
	if !end.After(start) {
		return domain.DateSelectionRange{}, domain.ErrInvalidRange
	}
	sel := domain.DateSelectionRange{
		Start:        start,
		End:          end,
		Availability: domain.AvailabilityAvailable,
		Anchor:       anchor,
	}
	p.mu.Lock()
	p.selection = &sel
	p.mu.Unlock()
	return sel, nil
}

func (p *Panel) SetSelectionAvailability(a domain.Availability) (domain.DateSelectionRange, error) {
	if !a.Valid() {
		return domain.DateSelectionRange{}, fmt.Errorf("%w: unknown availability %q", domain.ErrValidation, a)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selection == nil {
		return domain.DateSelectionRange{}, domain.ErrNoSelection
	}
	p.selection.Availability = a
	return *p.selection, nil
}

// Selection returns the open selection, if any.
func (p *Panel) Selection() (domain.DateSelectionRange, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selection == nil {
		return domain.DateSelectionRange{}, false
	}
	return *p.selection, true
}

func (p *Panel) CloseSelection() {
	p.mu.Lock()
	p.selection = nil
	p.mu.Unlock()
}

func (p *Panel) takeSelection() (domain.DateSelectionRange, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selection == nil {
		return domain.DateSelectionRange{}, domain.ErrNoSelection
	}
	sel := *p.selection
	p.selection = nil
	return sel, nil
}

// CreateBookingFromSelection closes the popover and returns a booking draft
// pre-filled with the selected range and the focused car, if any.
func (p *Panel) CreateBookingFromSelection() (domain.BookingDraft, error) {
	sel, err := p.takeSelection()
	if err != nil {
		return domain.BookingDraft{}, err
	}
	return domain.BookingDraft{
		StartDate: utils.FormatBookingTime(sel.Start),
		EndDate:   utils.FormatBookingTime(sel.End),
		CarID:     p.CurrentFocus().CarID,
	}, nil
}

// ShowAvailableCars broadcasts the selected range as a date filter for the
// car list, persists it with the topbar filters and closes the popover.
// A persistence failure is reported as a warning toast; the broadcast still
// happens.
func (p *Panel) ShowAvailableCars(ctx context.Context) (events.DateFilter, error) {
	sel, err := p.takeSelection()
	if err != nil {
		return events.DateFilter{}, err
	}
	filter := events.DateFilter{Start: sel.Start, End: sel.End, Availability: sel.Availability}

	if err := p.persistDateFilter(ctx, filter); err != nil {
		p.log.Warn("Failed to persist date filter", "key", p.opts.FilterKey, "error", err)
		p.toast(events.LevelWarning, "", "Could not save the date filter: %v", err)
	}
	p.bus.DateFilter.Publish(filter)
	return filter, nil
}

func (p *Panel) persistDateFilter(ctx context.Context, f events.DateFilter) error {
	if p.filters == nil {
		return nil
	}
	set, err := p.filters.Load(ctx, p.opts.FilterKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		set = &domain.FilterSet{}
	case err != nil:
		return err
	}
	start, end := f.Start, f.End
	set.Start = &start
	set.End = &end
	set.Availability = f.Availability
	return p.filters.Save(ctx, p.opts.FilterKey, *set)
}
