/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SECURITY NOTE:
  No authentication middleware. The X-Acting-User header is trusted at
  face value; identity is out of scope for this system.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Acting-User"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Calendar views
		r.Get("/calendar", h.GetCalendar)
		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/", h.GetDay)
			r.Post("/bookings", h.BookDesk)
			r.Delete("/bookings/{name}", h.CancelBooking)
			r.Post("/toggle", h.ToggleBooking)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.AddEmployee)
			r.Delete("/{name}", h.RemoveEmployee)
			r.Get("/{name}/bookings", h.GetEmployeeBookings)
		})

		// Reporting
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/audit", h.GetAudit)
	})

	return r
}
