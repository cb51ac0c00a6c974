package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDeps carries the engine services the transport exposes.
type RouterDeps struct {
	Availability AvailabilityQuerier
	Reservations ReservationLedger
	Bookings     BookingCalendar
	CORSOrigins  []string
	Logger       *slog.Logger
}

// NewRouter wires the engine's operations onto a chi mux. The
// surrounding business systems are the intended callers; there is no
// authentication here, only an already-resolved role flag on the
// availability queries.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(func(next http.Handler) http.Handler {
		return RequestLogger(next, deps.Logger)
	})
	r.Use(func(next http.Handler) http.Handler {
		return CORS(deps.CORSOrigins, next)
	})

	r.Get("/health", HealthHandler)

	r.Get("/availability", HandleGetAvailability(deps.Availability))
	r.Get("/availability/check", HandleCheckAvailability(deps.Availability))

	r.Post("/reservations", HandleCreateReservations(deps.Reservations))
	r.Post("/orders/{orderID}/reservations/{action}", HandleReservationTransition(deps.Reservations))
	r.Get("/orders/{orderID}/reservations", HandleListReservations(deps.Reservations))

	r.Post("/bookings", HandleCreateBookings(deps.Bookings))
	r.Delete("/orders/{orderID}/bookings", HandleClearBookings(deps.Bookings))
	r.Get("/orders/{orderID}/bookings", HandleListBookings(deps.Bookings))

	r.NotFound(NotFoundHandler().ServeHTTP)

	return r
}
