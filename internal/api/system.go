package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds all dependency probes of one /health request.
const healthCheckTimeout = 2 * time.Second

// handleHealth reports the server status and each configured dependency.
// Any failing dependency turns the response into 503 "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, checker := range s.checks {
		if err := checker.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
