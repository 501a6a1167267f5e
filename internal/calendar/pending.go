package calendar

import (
	"sync"

	"rentacar-calendar/internal/domain"
)

// pendingSet holds the ids of bookings with a reschedule in flight, along
// with the dates sent for them. At most one mutation per id is admitted.
type pendingSet struct {
	mu  sync.Mutex
	ids map[domain.ID]*domain.BookingPatch
}

func newPendingSet() *pendingSet {
	return &pendingSet{ids: make(map[domain.ID]*domain.BookingPatch)}
}

// TryAcquire marks id pending, returning false if it already was
func (s *pendingSet) TryAcquire(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.ids[id]; busy {
		return false
	}
	s.ids[id] = nil
	return true
}

// Track records the patch sent for an acquired id
func (s *pendingSet) Track(id domain.ID, patch domain.BookingPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		s.ids[id] = &patch
	}
}

// InFlight returns the patch sent for id, if any
func (s *pendingSet) InFlight(id domain.ID) (domain.BookingPatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch := s.ids[id]
	if patch == nil {
		return domain.BookingPatch{}, false
	}
	return *patch, true
}

func (s *pendingSet) Release(id domain.ID) {
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

func (s *pendingSet) Has(id domain.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

func (s *pendingSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
