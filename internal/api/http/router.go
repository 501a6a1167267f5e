package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"rentacar-calendar/internal/logger"
)

type Handlers struct {
	Calendar      *CalendarHandler
	Bookings      *BookingHandler
	Cars          *CarHandler
	Notifications *NotificationHandler
}

// RegisterRoutes mounts every endpoint under /api/v1
func RegisterRoutes(router *mux.Router, h Handlers) {
	router.Use(requestIDMiddleware)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	cal := api.PathPrefix("/calendar").Subrouter()
	cal.HandleFunc("/events", h.Calendar.ListEvents).Methods(http.MethodGet)
	cal.HandleFunc("/events/{id}", h.Calendar.GetEvent).Methods(http.MethodGet)
	cal.HandleFunc("/events/{id}/reschedule", h.Calendar.Reschedule).Methods(http.MethodPost)
	cal.HandleFunc("/resources", h.Calendar.ListResources).Methods(http.MethodGet)
	cal.HandleFunc("/grid", h.Calendar.Grid).Methods(http.MethodGet)
	cal.HandleFunc("/window", h.Calendar.SetWindow).Methods(http.MethodPost)
	cal.HandleFunc("/mode", h.Calendar.SetMode).Methods(http.MethodPut)
	cal.HandleFunc("/selection", h.Calendar.OpenSelection).Methods(http.MethodPost)
	cal.HandleFunc("/selection", h.Calendar.GetSelection).Methods(http.MethodGet)
	cal.HandleFunc("/selection", h.Calendar.CloseSelection).Methods(http.MethodDelete)
	cal.HandleFunc("/selection/availability", h.Calendar.SetSelectionAvailability).Methods(http.MethodPut)
	cal.HandleFunc("/selection/booking", h.Calendar.BookingFromSelection).Methods(http.MethodPost)
	cal.HandleFunc("/selection/available-cars", h.Calendar.AvailableCarsFromSelection).Methods(http.MethodPost)
	cal.HandleFunc("/focus", h.Calendar.Focus).Methods(http.MethodPost)
	cal.HandleFunc("/focus", h.Calendar.ClearFocus).Methods(http.MethodDelete)

	api.HandleFunc("/bookings", h.Bookings.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/payments", h.Bookings.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/quote", h.Bookings.Quote).Methods(http.MethodPost)

	api.HandleFunc("/cars", h.Cars.ListCars).Methods(http.MethodGet)
	api.HandleFunc("/filters", h.Cars.GetFilters).Methods(http.MethodGet)
	api.HandleFunc("/filters", h.Cars.PutFilters).Methods(http.MethodPut)

	if h.Notifications != nil {
		api.HandleFunc("/notifications", h.Notifications.List).Methods(http.MethodGet)
	}
}

// Wrap adds CORS, panic recovery and combined access logging around the router
func Wrap(router http.Handler, allowedOrigins []string, accessLog io.Writer) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowedHeaders([]string{"X-Requested-With", "X-Request-ID", "Authorization", "Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
	}
	if len(allowedOrigins) > 0 {
		opts = append(opts, handlers.AllowedOrigins(allowedOrigins))
	}
	h := handlers.CORS(opts...)(router)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(h)
	return handlers.CombinedLoggingHandler(accessLog, h)
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	logger.Error("Recovered from panic in HTTP handler", "panic", fmt.Sprint(v...))
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the current request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}
