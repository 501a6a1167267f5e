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

// DragGesture is a drop or resize reported by the calendar widget.
// NewEnd is zero when the widget did not supply one. Revert snaps the
// widget's bar back to where it was and may be nil.
type DragGesture struct {
	EventID  domain.ID
	NewStart time.Time
	NewEnd   time.Time
	Revert   func()
}

func (g DragGesture) revert() {
	if g.Revert != nil {
		g.Revert()
	}
}

// OnEventDragOrResize reschedules a booking. The move is applied locally
// first and confirmed by the backend; on failure the previous dates come
// back exactly. Only one reschedule per booking may be in flight, a second
// gesture on the same booking is rejected without touching the backend.
func (p *Panel) OnEventDragOrResize(ctx context.Context, g DragGesture) (domain.CalendarEvent, error) {
	if g.EventID == "" {
		g.revert()
		p.toast(events.LevelError, "", "Cannot reschedule: the booking has no id")
		return domain.CalendarEvent{}, domain.ErrMissingBookingID
	}
	if g.NewStart.IsZero() {
		g.revert()
		p.toast(events.LevelError, g.EventID, "Cannot reschedule booking %s: no start date", g.EventID)
		return domain.CalendarEvent{}, domain.ErrMissingStart
	}
	if !g.NewEnd.IsZero() && !g.NewEnd.After(g.NewStart) {
		g.revert()
		p.toast(events.LevelError, g.EventID, "Cannot reschedule booking %s: end must be after start", g.EventID)
		return domain.CalendarEvent{}, domain.ErrInvalidRange
	}

	if !p.pending.TryAcquire(g.EventID) {
		g.revert()
		p.log.Info("Rejected reschedule while another is in flight", "booking_id", g.EventID)
		p.toast(events.LevelWarning, g.EventID, "Booking %s is still being updated", g.EventID)
		ev, _ := p.Event(g.EventID)
		return ev, domain.ErrReschedulePending
	}

	// every path below releases the id exactly once
	prev, patch, err := p.applyOptimistic(g)
	if err != nil {
		p.pending.Release(g.EventID)
		g.revert()
		p.toast(events.LevelError, g.EventID, "Cannot reschedule booking %s: %v", g.EventID, err)
		return domain.CalendarEvent{}, err
	}

	p.log.Info("Rescheduling booking", "booking_id", g.EventID, "start", *patch.StartDate, "end", *patch.EndDate)
	server, err := p.bookings.Update(ctx, g.EventID, patch)
	if err != nil {
		return p.rollback(g, prev, err)
	}
	return p.confirm(g.EventID, patch, server)
}

// applyOptimistic moves the event to the gesture's dates, marks it pending
// and returns the event as it was before.
func (p *Panel) applyOptimistic(g DragGesture) (domain.CalendarEvent, domain.BookingPatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return domain.CalendarEvent{}, domain.BookingPatch{}, errors.New("calendar is closed")
	}
	i := p.indexLocked(g.EventID)
	if i < 0 {
		return domain.CalendarEvent{}, domain.BookingPatch{}, fmt.Errorf("%w: %s", domain.ErrEventNotFound, g.EventID)
	}
	prev := p.events[i]

	end := g.NewEnd
	if end.IsZero() {
		end = p.deriveEnd(prev.Booking, g.NewStart)
	}
	startStr := utils.FormatBookingTime(g.NewStart)
	endStr := utils.FormatBookingTime(end)
	patch := domain.BookingPatch{StartDate: &startStr, EndDate: &endStr}

	moved := prev
	moved.Start = g.NewStart
	moved.End = end
	moved.Pending = true
	moved.Editable = false
	moved.Booking.Apply(patch)
	p.events[i] = moved
	p.pending.Track(g.EventID, patch)
	return prev, patch, nil
}

// deriveEnd keeps the booking's previous duration, floored at the minimum,
// or falls back to the default duration when there is none.
func (p *Panel) deriveEnd(b domain.Booking, newStart time.Time) time.Time {
	start, errS := utils.ParseBookingTime(b.StartDate)
	end, errE := utils.ParseBookingTime(b.EndDate)
	if errS != nil || errE != nil || !end.After(start) {
		return newStart.Add(p.opts.DefaultDuration)
	}
	d := end.Sub(start)
	if d < p.opts.MinimumDuration {
		d = p.opts.MinimumDuration
	}
	return newStart.Add(d)
}

func (p *Panel) confirm(id domain.ID, patch domain.BookingPatch, server *domain.Booking) (domain.CalendarEvent, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.pending.Release(id)
		return domain.CalendarEvent{}, nil
	}
	i := p.indexLocked(id)
	if i < 0 {
		// window changed underneath us; the backend accepted the move anyway
		p.mu.Unlock()
		p.pending.Release(id)
		p.bus.BookingUpdated.Publish(events.BookingChanged{BookingID: id, Changes: patch})
		return domain.CalendarEvent{}, nil
	}
	ev := p.events[i]
	b := ev.Booking
	b.Apply(patch)
	b.Merge(server)
	if rebuilt, err := BuildEvent(b, p.colors, p.opts.DefaultDuration); err == nil {
		rebuilt.Pending, rebuilt.Editable = true, false
		ev = rebuilt
	} else {
		ev.Booking = b
	}
	p.events[i] = ev
	p.mu.Unlock()

	start, end := ev.Booking.StartDate, ev.Booking.EndDate
	p.bus.BookingUpdated.Publish(events.BookingChanged{
		BookingID: id,
		Changes:   domain.BookingPatch{StartDate: &start, EndDate: &end},
	})
	p.pending.Release(id)

	p.mu.Lock()
	if i := p.indexLocked(id); i >= 0 && !p.closed {
		// a gesture admitted after the release owns the flags now
		if !p.pending.Has(id) {
			p.events[i].Pending = false
			p.events[i].Editable = true
		}
		ev = p.events[i]
	}
	p.mu.Unlock()

	p.log.Info("Rescheduled booking", "booking_id", id, "start", start, "end", end)
	p.toast(events.LevelSuccess, id, "Booking %s rescheduled", id)
	return ev, nil
}

func (p *Panel) rollback(g DragGesture, prev domain.CalendarEvent, cause error) (domain.CalendarEvent, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.pending.Release(g.EventID)
		return domain.CalendarEvent{}, cause
	}
	restored := prev
	if i := p.indexLocked(g.EventID); i >= 0 {
		restored = p.events[i]
		restored.Start = prev.Start
		restored.End = prev.End
		restored.Booking.StartDate = prev.Booking.StartDate
		restored.Booking.EndDate = prev.Booking.EndDate
		restored.Pending = false
		restored.Editable = true
		p.events[i] = restored
	}
	p.mu.Unlock()

	g.revert()
	p.pending.Release(g.EventID)
	p.log.Error("Failed to reschedule booking", "booking_id", g.EventID, "error", cause)
	p.toast(events.LevelError, g.EventID, "Failed to reschedule booking %s: %v", g.EventID, cause)
	return restored, fmt.Errorf("reschedule booking %s: %w", g.EventID, cause)
}
