package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rentacar-calendar/internal/calendar"
	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/events"
	"rentacar-calendar/internal/repository/mocks"
	"rentacar-calendar/internal/service"
)

type testEnv struct {
	handler  http.Handler
	bookings *mocks.MockBookingRepo
	cars     *mocks.MockCarRepo
	filters  *mocks.MockFilterRepo
	bus      *events.Bus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		bookings: new(mocks.MockBookingRepo),
		cars:     new(mocks.MockCarRepo),
		filters:  new(mocks.MockFilterRepo),
		bus:      events.NewBus(),
	}
	panel := calendar.NewPanel(env.bookings, env.filters, env.bus, nil, calendar.Options{})
	filterSvc := service.NewFilterService(env.filters, "")
	carSvc := service.NewCarListService(env.cars, env.bookings, filterSvc, env.bus)
	feed := events.NewFeed(env.bus.Toast, 10)
	t.Cleanup(func() {
		panel.Close()
		carSvc.Close()
		feed.Close()
	})

	router := mux.NewRouter()
	RegisterRoutes(router, Handlers{
		Calendar:      NewCalendarHandler(panel, env.bus),
		Bookings:      NewBookingHandler(service.NewBookingService(env.bookings, env.cars, env.bus)),
		Cars:          NewCarHandler(carSvc),
		Notifications: NewNotificationHandler(feed),
	})
	env.handler = Wrap(router, []string{"http://localhost:5173"}, io.Discard)
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func marchBookings() []domain.Booking {
	return []domain.Booking{{
		ID: "55", CarID: "7",
		Car:       &domain.Car{ID: "7", Brand: "Toyota", Model: "Vios", PlateNumber: "ABC 123"},
		FirstName: "Juan", LastName: "Dela Cruz",
		StartDate: "2024-03-10 09:00:00", EndDate: "2024-03-12 09:00:00",
		Status: domain.BookingStatusPending,
	}}
}

func (env *testEnv) loadMarch(t *testing.T) {
	t.Helper()
	env.bookings.On("ListByWindow", mock.Anything, domain.MonthWindow("2024-03")).Return(marchBookings(), nil)
	rec := env.do(t, http.MethodPost, "/api/v1/calendar/window", map[string]any{"month": "2024-03"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/calendar/events", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCalendarHandler_WindowAndEvents(t *testing.T) {
	env := newTestEnv(t)
	env.loadMarch(t)

	rec := env.do(t, http.MethodGet, "/api/v1/calendar/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[eventsResponse](t, rec)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "2024-03-10 09:00:00", body.Events[0].Start)
	assert.Equal(t, "Toyota Vios (ABC 123) - Juan Dela Cruz", body.Events[0].Title)
	assert.Equal(t, "2024-03", body.Window.Month)

	rec = env.do(t, http.MethodGet, "/api/v1/calendar/resources", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/calendar/grid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	grid := decode[map[string][]dayResponse](t, rec)
	assert.Len(t, grid["days"], 31)

	rec = env.do(t, http.MethodPost, "/api/v1/calendar/window", map[string]any{"month": "2024-13"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/calendar/events/55", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Juan Dela Cruz", decode[calendar.EventInfo](t, rec).RenterName)

	rec = env.do(t, http.MethodGet, "/api/v1/calendar/events/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCalendarHandler_Reschedule(t *testing.T) {
	env := newTestEnv(t)
	env.loadMarch(t)

	env.bookings.On("Update", mock.Anything, domain.ID("55"), mock.Anything).
		Return(&domain.Booking{ID: "55"}, nil).Once()
	rec := env.do(t, http.MethodPost, "/api/v1/calendar/events/55/reschedule", rescheduleRequest{Start: "2024-03-15 09:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ev := decode[eventResponse](t, rec)
	assert.Equal(t, "2024-03-17 09:00:00", ev.End)
	assert.False(t, ev.Pending)

	env.bookings.On("Update", mock.Anything, domain.ID("55"), mock.Anything).
		Return(nil, domain.ErrValidation).Once()
	rec = env.do(t, http.MethodPost, "/api/v1/calendar/events/55/reschedule", rescheduleRequest{Start: "2024-03-20 09:00"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/calendar/events/55/reschedule", rescheduleRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[map[string][]events.FeedItem](t, rec)
	assert.Len(t, feed["notifications"], 3)
}

func TestCalendarHandler_SelectionFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/calendar/selection/booking", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/calendar/selection", selectionRequest{
		Start: "2024-03-10", End: "2024-03-13", Anchor: domain.Point{X: 1, Y: 2},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.AvailabilityAvailable, decode[selectionResponse](t, rec).Availability)

	rec = env.do(t, http.MethodPut, "/api/v1/calendar/selection/availability", map[string]string{"availability": "all"})
	require.Equal(t, http.StatusOK, rec.Code)

	env.filters.On("Load", mock.Anything, "topbarFilters").Return(nil, domain.ErrNotFound)
	env.filters.On("Save", mock.Anything, "topbarFilters", mock.Anything).Return(nil).Once()
	rec = env.do(t, http.MethodPost, "/api/v1/calendar/selection/available-cars", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/v1/calendar/selection", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the car list picked the range up from the bus
	rec = env.do(t, http.MethodGet, "/api/v1/filters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f := decode[domain.FilterSet](t, rec)
	assert.Equal(t, domain.AvailabilityAll, f.Availability)
	require.NotNil(t, f.Start)

	rec = env.do(t, http.MethodPost, "/api/v1/calendar/selection", selectionRequest{Start: "2024-03-10", End: "2024-03-11"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/calendar/selection/booking", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-03-10 00:00:00", decode[domain.BookingDraft](t, rec).StartDate)

	rec = env.do(t, http.MethodDelete, "/api/v1/calendar/selection", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCalendarHandler_Focus(t *testing.T) {
	env := newTestEnv(t)
	env.loadMarch(t)

	rec := env.do(t, http.MethodPost, "/api/v1/calendar/focus", events.CarFocus{CarID: "8"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[eventsResponse](t, rec).Events)

	rec = env.do(t, http.MethodDelete, "/api/v1/calendar/focus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[eventsResponse](t, rec).Events, 1)

	rec = env.do(t, http.MethodPost, "/api/v1/calendar/focus", events.CarFocus{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBookingHandler(t *testing.T) {
	env := newTestEnv(t)
	// booking:created makes the calendar reload the current month
	env.bookings.On("ListByWindow", mock.Anything, mock.Anything).Return([]domain.Booking{}, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{"car_id": 7})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decode[errorResponse](t, rec)
	assert.Equal(t, "is required", errBody.Fields["first_name"])

	env.bookings.On("Create", mock.Anything, mock.Anything).Return(&domain.Booking{ID: "101"}, nil).Once()
	rec = env.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{
		"car_id": 7, "first_name": "Ana", "last_name": "Reyes", "phone": "0917",
		"start_date": "2024-03-10 09:00", "end_date": "2024-03-11 09:00",
		"base_amount": "1,000", "status": "Pending",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ID("101"), decode[domain.Booking](t, rec).ID)

	env.bookings.On("CreatePayment", mock.Anything, domain.ID("101"), mock.Anything).
		Return(&domain.Payment{ID: "9", BookingID: "101", Amount: 500}, nil).Once()
	rec = env.do(t, http.MethodPost, "/api/v1/bookings/101/payments", map[string]any{"amount": 500, "method": "cash"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/quote", map[string]any{
		"daily_rate": 1000, "start_date": "2024-03-10 09:00", "end_date": "2024-03-12 09:00",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2000.0, decode[map[string]any](t, rec)["total_amount"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCarHandler(t *testing.T) {
	env := newTestEnv(t)
	env.filters.On("Load", mock.Anything, "topbarFilters").Return(&domain.FilterSet{Brand: "honda"}, nil)
	env.cars.On("List", mock.Anything, mock.Anything).Return([]domain.Car{
		{ID: "7", Brand: "Toyota", Model: "Vios"},
		{ID: "8", Brand: "Honda", Model: "City"},
	}, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/cars", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[map[string][]service.CarAvailability](t, rec)["cars"]
	require.Len(t, rows, 1)
	assert.Equal(t, "Honda City", rows[0].Label)

	env.filters.On("Save", mock.Anything, "topbarFilters", domain.FilterSet{Gear: "Manual"}).Return(nil).Once()
	rec = env.do(t, http.MethodPut, "/api/v1/filters", domain.FilterSet{Gear: "Manual"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/filters", domain.FilterSet{Availability: "never"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrReschedulePending))
	assert.Equal(t, http.StatusBadGateway, statusFor(domain.ErrUnauthorized))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
