package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/heatroll/internal/auth"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// WebSocket (long-lived, outside the request timeout)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Catalog (public)
		r.Get("/api/heats", h.handleListHeats)
		r.Get("/api/platforms", h.handleListPlatforms)
		r.Get("/games/{id}/cover", h.handleGameCover)

		// Auth routes (public)
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)

		// Participant API
		r.Route("/api/heats/{heatID}", func(r chi.Router) {
			r.Use(auth.RequireParticipant)
			r.Get("/", h.handleGetHeat)
			r.Get("/signup", h.handleGetSignup)
			r.Post("/rolls", h.handleDraw)
			r.Delete("/rolls/{rollID}", h.handleVeto)
			r.Put("/pick", h.handleFinalizePick)
			r.Delete("/pick", h.handleUndoPick)
			r.Put("/status", h.handleSetStatus)
		})

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)

			r.Post("/api/admin/signups/{signupID}/reset", h.handleAdminResetSignup)
			r.Get("/api/admin/heats/{heatID}/signups", h.handleListSignups)
			r.Get("/api/admin/heats/{heatID}/stats", h.handleGetStats)
			r.Get("/api/admin/heats/{heatID}/qr", h.handleGetHeatQR)

			// Database Management
			r.Post("/api/admin/seed-mock-data", h.handleSeedMockData)
			r.Post("/api/admin/reset-database", h.handleResetDatabase)
		})
	})

	return r
}
