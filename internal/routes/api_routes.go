package routes

import (
	"github.com/go-chi/chi/v5"

	"skytracker/backend/internal/api"
	"skytracker/backend/internal/metrics"
	"skytracker/backend/internal/middleware"
)

// RegisterAPIRoutes registers the flight feed, auth, favorites, and websocket
// routes. This keeps route registration separate from the main router setup.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, metricsReg *metrics.MetricsRegistry) {

	flightSvc := deps.Services.Flights
	authSvc := deps.Services.Auth
	favSvc := deps.Services.Favorites

	r.Route("/api", func(root chi.Router) {
		root.Use(middleware.RateLimitMiddleware)

		// Flight feeds are public and always answer 200; failures degrade
		// to stale or empty bodies
		root.Get("/flights", api.GetFlightsHandler(flightSvc))
		root.Get("/positions", api.GetPositionsHandler(flightSvc))
		root.Get("/flights/airport/{code}", api.AirportFlightsHandler(flightSvc))
		root.Get("/tracks/{icao24}", api.AircraftTrackHandler(flightSvc))
		root.Get("/aircraft/photo/{icao24}", api.AircraftPhotoHandler(flightSvc))

		// Auth
		root.Post("/auth/signup", api.SignupHandler(authSvc))
		root.Post("/auth/login", api.LoginHandler(authSvc))
		root.Post("/auth/logout", api.LogoutHandler())
		root.Post("/auth/reset-password", api.ResetPasswordHandler(authSvc))

		// Session-gated group
		root.Group(func(session chi.Router) {
			session.Use(middleware.SessionMiddleware(authSvc))

			session.Get("/auth/me", api.MeHandler())
			session.Put("/auth/me", api.UpdateProfileHandler(authSvc))
			session.Delete("/auth/me", api.DeleteAccountHandler(authSvc))

			session.Get("/favorites", api.ListFavoritesHandler(favSvc))
			session.Post("/favorites", api.AddFavoriteHandler(favSvc))
			session.Post("/favorites/toggle", api.ToggleFavoriteHandler(favSvc))
			session.Put("/favorites/{id}", api.SetFavoriteStatusHandler(favSvc))
			session.Delete("/favorites/{id}", api.RemoveFavoriteHandler(favSvc))
		})
	})

	// Live position stream, outside the rate limiter so long-lived sockets
	// do not consume the per-IP budget
	r.Get("/ws/positions", api.PositionsSocketHandler(flightSvc, metricsReg))
}
