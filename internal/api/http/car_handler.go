package http

import (
	"net/http"
	"time"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/service"
)

type CarHandler struct {
	carSvc service.CarListService
}

func NewCarHandler(carSvc service.CarListService) *CarHandler {
	return &CarHandler{carSvc: carSvc}
}

func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	rows, err := h.carSvc.ListCars(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": rows})
}

func (h *CarHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	f, err := h.carSvc.CurrentFilters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *CarHandler) PutFilters(w http.ResponseWriter, r *http.Request) {
	var f domain.FilterSet
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := h.carSvc.ApplyFilters(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type NotificationHandler struct {
	feed *events.Feed
}

func NewNotificationHandler(feed *events.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List returns recent toasts, optionally only those after ?since=RFC3339
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, r, fieldErr("since", "must be an RFC 3339 timestamp"))
			return
		}
		since = t
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": h.feed.Since(since)})
}
