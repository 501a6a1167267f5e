// Package events is the typed in-process publish/subscribe bus that carries
// cross-view signals (booking created/updated, car focus, date filter, toasts).
package events

import (
	"slices"
	"sync"
	"time"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/logger"
)

// Topic names, kept identical to the signals the UI already dispatches.
const (
	TopicBookingCreated = "booking:created"
	TopicBookingUpdated = "booking:updated"
	TopicCarFocus       = "car:focusSchedules"
	TopicDateFilter     = "calendar:applyDateFilter"
	TopicToast          = "notification:toast"
)

// BookingChanged carries the booking id and the changed fields only.
type BookingChanged struct {
	BookingID domain.ID           `json:"booking_id"`
	Changes   domain.BookingPatch `json:"changes"`
}

// CarFocus narrows the calendar to one car. The zero value clears the focus.
type CarFocus struct {
	CarID    domain.ID `json:"car_id,omitempty"`
	Identity string    `json:"identity,omitempty"`
}

func (f CarFocus) IsZero() bool { return f.CarID == "" && f.Identity == "" }

type DateFilter struct {
	Start        time.Time           `json:"start"`
	End          time.Time           `json:"end"`
	Availability domain.Availability `json:"availability"`
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient, non-blocking message for the user.
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	BookingID domain.ID `json:"booking_id,omitempty"`
}

// Topic is a single typed channel of the bus.
type Topic[T any] struct {
	name string
	mu   sync.RWMutex
	next uint64
	subs map[uint64]func(T)
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name, subs: make(map[uint64]func(T))}
}

func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers fn and returns a function that removes it again.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	t.mu.Lock()
	id := t.next
	t.next++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Publish delivers v to every subscriber in the caller's goroutine, in
// subscription order. Subscribers may publish or unsubscribe re-entrantly.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	ids := make([]uint64, 0, len(t.subs))
	fns := make(map[uint64]func(T), len(t.subs))
	for id, fn := range t.subs {
		ids = append(ids, id)
		fns[id] = fn
	}
	t.mu.RUnlock()

	slices.Sort(ids)
	for _, id := range ids {
		t.deliver(fns[id], v)
	}
}

func (t *Topic[T]) SubscriberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Topic[T]) deliver(fn func(T), v T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event subscriber panicked", "topic", t.name, "panic", r)
		}
	}()
	fn(v)
}

// Bus groups every topic the engine knows about.
type Bus struct {
	BookingCreated *Topic[BookingChanged]
	BookingUpdated *Topic[BookingChanged]
	CarFocus       *Topic[CarFocus]
	DateFilter     *Topic[DateFilter]
	Toast          *Topic[Notification]
}

func NewBus() *Bus {
	return &Bus{
		BookingCreated: NewTopic[BookingChanged](TopicBookingCreated),
		BookingUpdated: NewTopic[BookingChanged](TopicBookingUpdated),
		CarFocus:       NewTopic[CarFocus](TopicCarFocus),
		DateFilter:     NewTopic[DateFilter](TopicDateFilter),
		Toast:          NewTopic[Notification](TopicToast),
	}
}
