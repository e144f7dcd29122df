package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/handlers"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	systemHandler := handlers.NewSystemHandler(s.analyzer, s.store, s.metrics, s.wsHub.ClientCount)

	// Ungated
	s.router.Get("/health", systemHandler.Health)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Reload notifications carry no records.
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.config.PasswordHash != "" {
			r.Use(newPasswordAuth(s.config.PasswordHash).middleware)
		}

		r.Get("/status", systemHandler.GetStatus)

		statsHandler := handlers.NewStatsHandler(s.analyzer)
		r.Get("/options", statsHandler.GetOptions)
		r.Post("/archetypes", statsHandler.GetArchetypes)
		r.Post("/archetypes/types", statsHandler.GetTypes)
		r.Post("/overview", statsHandler.GetOverview)
		r.Post("/focus", statsHandler.GetFocus)
		r.Post("/records", statsHandler.GetRecords)

		exportHandler := handlers.NewExportHandler(s.analyzer)
		r.Post("/export/{table}", exportHandler.Export)

		chartHandler := handlers.NewChartHandler(s.analyzer)
		r.Route("/charts", func(r chi.Router) {
			r.Post("/overview", chartHandler.Overview)
			r.Post("/focus", chartHandler.Focus)
		})

		if s.store != nil {
			playerHandler := handlers.NewPlayerHandler(s.store)
			r.Get("/players", playerHandler.List)
		}
	})
}
