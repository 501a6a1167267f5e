// Package calendar holds the booking calendar panel: the events of the
// visible window, the in-flight reschedule set, the car focus and the
// date-selection popover.
package calendar

import (
	"context"
	"errors"
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

type Options struct {
	Mode domain.ViewMode
	// Weekly makes Refresh start from the current ISO week instead of the
	// current month when nothing was loaded yet.
	Weekly bool
	// DefaultDuration is added to a dropped start when no prior duration exists.
	DefaultDuration time.Duration
	// MinimumDuration floors a preserved duration.
	MinimumDuration time.Duration
	// FilterKey is the preference key the date filter is persisted under.
	FilterKey string
	// ReloadTimeout bounds reloads triggered from the bus.
	ReloadTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.Mode == "" {
		o.Mode = domain.ViewModeTimeline
	}
	if o.DefaultDuration <= 0 {
		o.DefaultDuration = 24 * time.Hour
	}
	if o.MinimumDuration <= 0 {
		o.MinimumDuration = time.Hour
	}
	if o.FilterKey == "" {
		o.FilterKey = "topbarFilters"
	}
	if o.ReloadTimeout <= 0 {
		o.ReloadTimeout = 15 * time.Second
	}
}

type Panel struct {
	bookings repository.BookingRepository
	filters  repository.FilterRepository
	bus      *events.Bus
	colors   *ColorAssigner
	opts     Options
	log      *slog.Logger
	pending  *pendingSet

	mu        sync.Mutex
	mode      domain.ViewMode
	window    *domain.VisibleWindow
	loadSeq   uint64
	events    []domain.CalendarEvent
	focus     events.CarFocus
	selection *domain.DateSelectionRange
	closed    bool
	unsubs    []func()
}

// NewPanel builds a panel and subscribes it to the bus. filters may be nil,
// in which case date filters are broadcast but not persisted.
func NewPanel(bookings repository.BookingRepository, filters repository.FilterRepository, bus *events.Bus, colors *ColorAssigner, opts Options) *Panel {
	opts.setDefaults()
	if colors == nil {
		colors = NewColorAssigner(nil, nil)
	}
	p := &Panel{
		bookings: bookings,
		filters:  filters,
		bus:      bus,
		colors:   colors,
		opts:     opts,
		log:      logger.WithComponent("calendar"),
		pending:  newPendingSet(),
		mode:     opts.Mode,
	}
	p.unsubs = append(p.unsubs,
		bus.BookingUpdated.Subscribe(p.onBookingUpdated),
		bus.BookingCreated.Subscribe(p.onBookingCreated),
		bus.CarFocus.Subscribe(p.Focus),
	)
	return p
}

// Close unsubscribes the panel. Reschedules still in flight resolve into
// nothing once the panel is closed.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	unsubs := p.unsubs
	p.unsubs = nil
	p.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

func (p *Panel) Mode() domain.ViewMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Panel) SetMode(mode domain.ViewMode) error {
	if mode != domain.ViewModeTimeline && mode != domain.ViewModeCalendar {
		return fmt.Errorf("%w: unknown view mode %q", domain.ErrValidation, mode)
	}
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
	return nil
}

// Window returns the currently visible window, if one was loaded.
func (p *Panel) Window() (domain.VisibleWindow, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.window == nil {
		return domain.VisibleWindow{}, false
	}
	return *p.window, true
}

// LoadVisibleRange replaces the panel's events with the bookings of window.
// A failed fetch leaves the panel empty. There is no retry.
func (p *Panel) LoadVisibleRange(ctx context.Context, window domain.VisibleWindow) error {
	if err := window.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.window = &window
	p.loadSeq++
	seq := p.loadSeq
	p.mu.Unlock()

	bookings, err := p.bookings.ListByWindow(ctx, window)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || seq != p.loadSeq {
		// superseded by a newer load or the panel went away
		return nil
	}
	if err != nil {
		p.events = nil
		p.log.Error("Failed to load bookings", "window", window.String(), "error", err)
		return fmt.Errorf("failed to load bookings for %s: %w", window, err)
	}

	evs := make([]domain.CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		// keep the optimistic position of a move the backend has not answered yet
		if patch, ok := p.pending.InFlight(b.ID); ok {
			b.Apply(patch)
		}
		ev, err := BuildEvent(b, p.colors, p.opts.DefaultDuration)
		if err != nil {
			p.log.Warn("Skipping booking without usable dates", "booking_id", b.ID, "error", err)
			continue
		}
		if p.pending.Has(ev.ID) {
			ev.Pending = true
			ev.Editable = false
		}
		evs = append(evs, ev)
	}
	p.events = evs
	p.log.Info("Loaded visible range", "window", window.String(), "events", len(evs))
	return nil
}

// Refresh reloads the current window, or the window containing today when
// nothing was loaded yet.
func (p *Panel) Refresh(ctx context.Context) error {
	window, ok := p.Window()
	if !ok {
		window = utils.WindowContaining(time.Now(), p.opts.Weekly)
	}
	return p.LoadVisibleRange(ctx, window)
}

// Events returns the visible events ordered by start, narrowed to the
// focused car when a focus is set.
func (p *Panel) Events() []domain.CalendarEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibleLocked()
}

func (p *Panel) visibleLocked() []domain.CalendarEvent {
	out := make([]domain.CalendarEvent, 0, len(p.events))
	for _, ev := range p.events {
		if p.matchesFocusLocked(ev) {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.CalendarEvent) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

func (p *Panel) matchesFocusLocked(ev domain.CalendarEvent) bool {
	if p.focus.IsZero() {
		return true
	}
	if p.focus.CarID != "" {
		return ev.ResourceID == p.focus.CarID
	}
	return carIdentity(ev.ResourceID, ev.Booking.Car) == domain.NormalizeIdentity(p.focus.Identity)
}

// Resource is one timeline row: a car and its bookings.
type Resource struct {
	ID     domain.ID              `json:"id"`
	Label  string                 `json:"label"`
	Color  string                 `json:"color"`
	Events []domain.CalendarEvent `json:"events"`
}

// Resources groups the visible events by car, sorted by label.
func (p *Panel) Resources() []Resource {
	p.mu.Lock()
	visible := p.visibleLocked()
	p.mu.Unlock()

	byID := make(map[domain.ID]*Resource)
	var order []domain.ID
	for _, ev := range visible {
		r, ok := byID[ev.ResourceID]
		if !ok {
			label := ev.Booking.Car.Label()
			if label == "" {
				label = "Car #" + string(ev.ResourceID)
			}
			r = &Resource{ID: ev.ResourceID, Label: label, Color: ev.Color}
			byID[ev.ResourceID] = r
			order = append(order, ev.ResourceID)
		}
		r.Events = append(r.Events, ev)
	}

	out := make([]Resource, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	slices.SortFunc(out, func(a, b Resource) int {
		if c := strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label)); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// DayCell is one day of the month/week grid.
type DayCell struct {
	Date   string                 `json:"date"`
	Events []domain.CalendarEvent `json:"events"`
}

// DayGrid lays the visible events out per day of the current window.
func (p *Panel) DayGrid() ([]DayCell, error) {
	p.mu.Lock()
	if p.window == nil {
		p.mu.Unlock()
		return nil, domain.ErrInvalidWindow
	}
	window := *p.window
	visible := p.visibleLocked()
	p.mu.Unlock()

	from, to, err := utils.WindowBounds(window)
	if err != nil {
		return nil, err
	}
	days := utils.DaysIn(from, to)
	cells := make([]DayCell, 0, len(days))
	for _, day := range days {
		cell := DayCell{Date: day.Format("2006-01-02"), Events: []domain.CalendarEvent{}}
		next := day.AddDate(0, 0, 1)
		for _, ev := range visible {
			if utils.Overlaps(ev.Start, ev.End, day, next) {
				cell.Events = append(cell.Events, ev)
			}
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// OnEventClick returns the read-only summary of an event.
func (p *Panel) OnEventClick(id domain.ID) (EventInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexLocked(id)
	if i < 0 {
		return EventInfo{}, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
	}
	return infoFor(p.events[i]), nil
}

// Event returns a copy of one event, ignoring the focus filter.
func (p *Panel) Event(id domain.ID) (domain.CalendarEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexLocked(id)
	if i < 0 {
		return domain.CalendarEvent{}, false
	}
	return p.events[i], true
}

func (p *Panel) indexLocked(id domain.ID) int {
	return slices.IndexFunc(p.events, func(ev domain.CalendarEvent) bool { return ev.ID == id })
}

// Focus narrows the panel to one car. A zero focus shows every car again.
func (p *Panel) Focus(f events.CarFocus) {
	p.mu.Lock()
	p.focus = f
	p.mu.Unlock()
	if !f.IsZero() {
		p.log.Debug("Focused car", "car_id", f.CarID, "identity", f.Identity)
	}
}

func (p *Panel) ClearFocus() {
	p.Focus(events.CarFocus{})
}

func (p *Panel) CurrentFocus() events.CarFocus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focus
}

func (p *Panel) onBookingUpdated(c events.BookingChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	i := p.indexLocked(c.BookingID)
	if i < 0 {
		return
	}
	ev := p.events[i]
	b := ev.Booking
	b.Apply(c.Changes)
	rebuilt, err := BuildEvent(b, p.colors, p.opts.DefaultDuration)
	if err != nil {
		p.log.Warn("Ignoring booking update with unusable dates", "booking_id", c.BookingID, "error", err)
		return
	}
	rebuilt.Pending = ev.Pending
	rebuilt.Editable = ev.Editable
	p.events[i] = rebuilt
}

func (p *Panel) onBookingCreated(c events.BookingChanged) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.ReloadTimeout)
	defer cancel()
	if err := p.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Error("Failed to reload after booking created", "booking_id", c.BookingID, "error", err)
	}
}

func (p *Panel) toast(level events.Level, id domain.ID, format string, args ...any) {
	p.bus.Toast.Publish(events.Notification{Level: level, BookingID: id, Message: fmt.Sprintf(format, args...)})
}
