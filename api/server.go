/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/trips/*      Trip lifecycle, stages, expenses, day flags
  /api/countries/*  Statutory country table with rate histories
  /api/settings     Active calculator settings snapshot

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

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Get("/", h.ListTrips)
			r.Post("/", h.CreateTrip)
			r.Get("/{id}", h.GetTrip)
			r.Delete("/{id}", h.DeleteTrip)

			r.Post("/{id}/stages", h.AddStage)
			r.Put("/{id}/stages/{stageID}", h.UpdateStage)
			r.Delete("/{id}/stages/{stageID}", h.DeleteStage)

			r.Post("/{id}/expenses", h.AddExpense)
			r.Put("/{id}/days/{date}", h.UpdateDayFlags)
		})

		r.Route("/countries", func(r chi.Router) {
			r.Get("/", h.ListCountries)
			r.Get("/{code}", h.GetCountry)
			r.Put("/{code}", h.UpsertCountry)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})
	})

	return r
}
