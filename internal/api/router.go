package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Group middleware runs after routing, so the limiter sees the
		// matched route pattern. Keep routes flat: a nested Route would
		// run it before the pattern is complete.
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)

			// Health and metrics (no auth required)
			r.Get("/health", s.handleHealth)
			r.Get("/metrics", s.handleMetrics)

			// Auth endpoints (no auth required)
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
			r.Get("/auth/verify", s.handleVerify)
			r.Post("/auth/verify", s.handleVerify)
			r.Post("/auth/refresh", s.handleRefresh)
			r.Post("/auth/logout", s.handleLogout)

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)

				r.Get("/me", s.handleMe)
				r.Get("/auth/sessions", s.handleListSessions)
				r.Post("/auth/logout-all", s.handleLogoutAll)

				r.Get("/team/members", s.handleListMembers)
				r.Post("/team/members", s.handleRegisterMember)
				r.Patch("/team/members/{email}", s.handleUpdateMember)
				r.Delete("/team/members/{email}", s.handleRemoveMember)

				r.Get("/company/profile", s.handleGetProfile)
				r.Patch("/company/profile", s.handleUpdateProfile)

				r.Get("/company/locations", s.handleListLocations)
				r.Post("/company/locations", s.handleAddLocation)
				r.Patch("/company/locations/{ref}", s.handleUpdateLocation)
				r.Delete("/company/locations/{ref}", s.handleRemoveLocation)

				r.Get("/company/fleet-categories", s.handleListFleetCategories)
				r.Post("/company/fleet-categories", s.handleAddFleetCategory)
				r.Patch("/company/fleet-categories/{ref}", s.handleUpdateFleetCategory)
				r.Delete("/company/fleet-categories/{ref}", s.handleRemoveFleetCategory)

				r.Get("/audit", s.handleListAuditLogs)
			})
		})
	})

	return r
}
