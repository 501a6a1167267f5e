package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentacar-calendar/internal/calendar"
	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/utils"
)

// CalendarPanel is the part of the calendar panel exposed over HTTP
type CalendarPanel interface {
	LoadVisibleRange(ctx context.Context, window domain.VisibleWindow) error
	Window() (domain.VisibleWindow, bool)
	Mode() domain.ViewMode
	SetMode(mode domain.ViewMode) error
	Events() []domain.CalendarEvent
	Resources() []calendar.Resource
	DayGrid() ([]calendar.DayCell, error)
	OnEventClick(id domain.ID) (calendar.EventInfo, error)
	OnEventDragOrResize(ctx context.Context, g calendar.DragGesture) (domain.CalendarEvent, error)
	OnRangeSelect(start, end time.Time, anchor domain.Point) (domain.DateSelectionRange, error)
	SetSelectionAvailability(a domain.Availability) (domain.DateSelectionRange, error)
	Selection() (domain.DateSelectionRange, bool)
	CloseSelection()
	CreateBookingFromSelection() (domain.BookingDraft, error)
	ShowAvailableCars(ctx context.Context) (events.DateFilter, error)
	CurrentFocus() events.CarFocus
}

type CalendarHandler struct {
	panel CalendarPanel
	bus   *events.Bus
}

func NewCalendarHandler(panel CalendarPanel, bus *events.Bus) *CalendarHandler {
	return &CalendarHandler{panel: panel, bus: bus}
}

type windowRequest struct {
	Month string          `json:"month,omitempty"`
	Week  int             `json:"week,omitempty"`
	Year  int             `json:"year,omitempty"`
	Mode  domain.ViewMode `json:"mode,omitempty"`
}

type eventsResponse struct {
	Window *domain.VisibleWindow `json:"window,omitempty"`
	Mode   domain.ViewMode       `json:"mode"`
	Focus  *events.CarFocus      `json:"focus,omitempty"`
	Events []eventResponse       `json:"events"`
}

func (h *CalendarHandler) snapshot() eventsResponse {
	resp := eventsResponse{Mode: h.panel.Mode(), Events: mapEvents(h.panel.Events())}
	if w, ok := h.panel.Window(); ok {
		resp.Window = &w
	}
	if f := h.panel.CurrentFocus(); !f.IsZero() {
		resp.Focus = &f
	}
	return resp
}

func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot())
}

func (h *CalendarHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"resources": mapResources(h.panel.Resources())})
}

func (h *CalendarHandler) Grid(w http.ResponseWriter, r *http.Request) {
	cells, err := h.panel.DayGrid()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": mapDays(cells)})
}

// SetWindow loads a month or an ISO week. A failed load still answers with
// the (now empty) event list alongside the error.
func (h *CalendarHandler) SetWindow(w http.ResponseWriter, r *http.Request) {
	var req windowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Mode != "" {
		if err := h.panel.SetMode(req.Mode); err != nil {
			writeError(w, r, err)
			return
		}
	}
	window := domain.VisibleWindow{Month: req.Month, ISOWeek: req.Week, ISOYear: req.Year}
	if err := h.panel.LoadVisibleRange(r.Context(), window); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot())
}

func (h *CalendarHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode domain.ViewMode `json:"mode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.panel.SetMode(req.Mode); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": h.panel.Mode()})
}

func (h *CalendarHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	info, err := h.panel.OnEventClick(domain.ID(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type rescheduleRequest struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

func (h *CalendarHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g := calendar.DragGesture{EventID: domain.ID(mux.Vars(r)["id"])}
	if req.Start != "" {
		start, err := utils.ParseBookingTime(req.Start)
		if err != nil {
			writeError(w, r, domain.ErrMissingStart)
			return
		}
		g.NewStart = start
	}
	if req.End != "" {
		end, err := utils.ParseBookingTime(req.End)
		if err != nil {
			writeError(w, r, domain.ErrInvalidRange)
			return
		}
		g.NewEnd = end
	}

	ev, err := h.panel.OnEventDragOrResize(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapEvent(ev))
}

type selectionRequest struct {
	Start  string       `json:"start"`
	End    string       `json:"end"`
	Anchor domain.Point `json:"anchor"`
}

func (h *CalendarHandler) OpenSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := utils.ParseBookingTime(req.Start)
	if err != nil {
		writeError(w, r, domain.ErrMissingStart)
		return
	}
	end, err := utils.ParseBookingTime(req.End)
	if err != nil {
		writeError(w, r, domain.ErrInvalidRange)
		return
	}
	sel, err := h.panel.OnRangeSelect(start, end, req.Anchor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapSelection(sel))
}

func (h *CalendarHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.panel.Selection()
	if !ok {
		writeError(w, r, domain.ErrNoSelection)
		return
	}
	writeJSON(w, http.StatusOK, mapSelection(sel))
}

func (h *CalendarHandler) SetSelectionAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Availability domain.Availability `json:"availability"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sel, err := h.panel.SetSelectionAvailability(req.Availability)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSelection(sel))
}

func (h *CalendarHandler) CloseSelection(w http.ResponseWriter, r *http.Request) {
	h.panel.CloseSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CalendarHandler) BookingFromSelection(w http.ResponseWriter, r *http.Request) {
	draft, err := h.panel.CreateBookingFromSelection()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *CalendarHandler) AvailableCarsFromSelection(w http.ResponseWriter, r *http.Request) {
	f, err := h.panel.ShowAvailableCars(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start":        utils.FormatBookingTime(f.Start),
		"end":          utils.FormatBookingTime(f.End),
		"availability": f.Availability,
	})
}

// Focus is dispatched on the bus like any other car-list focus signal
func (h *CalendarHandler) Focus(w http.ResponseWriter, r *http.Request) {
	var req events.CarFocus
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsZero() {
		writeError(w, r, fieldErr("car_id", "car_id or identity is required"))
		return
	}
	h.bus.CarFocus.Publish(req)
	writeJSON(w, http.StatusOK, h.snapshot())
}

func (h *CalendarHandler) ClearFocus(w http.ResponseWriter, r *http.Request) {
	h.bus.CarFocus.Publish(events.CarFocus{})
	writeJSON(w, http.StatusOK, h.snapshot())
}
