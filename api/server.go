/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/soldiers/*       Personnel and time-bank operations
  /api/rosters/*        Generated shift rosters
  /api/duty/*           Shift-cycle forecasting
  /api/extra-duty/*     Rotating extra-duty queue
  /api/settings         Application settings
  /api/holidays         National holiday calendar
  /api/reports/*        Strength reports

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

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
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Personnel routes
		r.Route("/soldiers", func(r chi.Router) {
			r.Get("/", h.ListSoldiers)
			r.Post("/", h.SaveSoldier)
			r.Get("/{id}", h.GetSoldier)
			r.Delete("/{id}", h.DeleteSoldier)
			r.Get("/{id}/bank", h.GetBankStatement)
			r.Post("/{id}/bank", h.RecordTransaction)
			r.Delete("/{id}/bank/{txID}", h.DeleteTransaction)
		})

		// Roster routes
		r.Route("/rosters", func(r chi.Router) {
			r.Get("/", h.ListRosters)
			r.Post("/", h.SaveRoster)
			r.Delete("/{id}", h.DeleteRoster)
		})

		// Shift-cycle routes
		r.Route("/duty", func(r chi.Router) {
			r.Get("/forecast", h.DutyForecast)
		})

		// Extra-duty routes
		r.Route("/extra-duty", func(r chi.Router) {
			r.Get("/queue", h.ExtraDutyQueue)
			r.Post("/preview", h.ExtraDutyPreview)
			r.Post("/confirm", h.ExtraDutyConfirm)
			r.Post("/reset", h.ExtraDutyReset)
			r.Get("/history", h.ExtraDutyHistory)
		})

		// Settings routes
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.SaveSettings)

		// Holiday routes
		r.Get("/holidays", h.ListHolidays)

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/strength", h.StrengthReport)
		})
	})

	return r
}
