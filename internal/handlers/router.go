package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes builds the HTTP router.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", rationaleKeyHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/games", h.CreateGame)
		r.Get("/games/{gameId}", h.GetGame)
		r.Post("/games/{gameId}/moves", h.PlayMove)

		r.Get("/players/{playerId}/pattern", h.GetPlayerPattern)
		r.Get("/players/{playerId}/stats", h.GetPlayerStats)
		r.Get("/players/{playerId}/achievements", h.GetPlayerAchievements)

		r.Get("/leaderboard", h.GetLeaderboard)
		r.Get("/leaderboard/{stat}", h.GetLeaderboard)

		r.Post("/system/install", h.InstallDatabase)
	})

	return r
}
