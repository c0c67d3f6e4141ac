package api

import (
	"context"
	"net/http"
	"time"
)

const readinessTimeout = 2 * time.Second

// handlePing is a trivial liveness probe.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// handleReady reports whether the server can serve traffic. With a storage
// backend wired in, readiness requires a successful health check; without
// one the server is ready as soon as it listens.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := s.health.HealthCheck(ctx); err != nil {
			s.logger.Warn("Readiness check failed", "error", err)
			WriteErrorResponse(w, r, s.logger, NewProblemDetail(
				http.StatusServiceUnavailable, "Service Unavailable", "Storage backend is unreachable"))

			return
		}
	}

	writeJSON(w, r, s.logger, http.StatusOK, HealthStatus{
		Status:      "ready",
		ServiceName: serviceName,
		Version:     serviceVersion,
	})
}

// handleHealth reports liveness plus process uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:      "healthy",
		ServiceName: serviceName,
		Version:     serviceVersion,
	}

	if !s.startTime.IsZero() {
		status.Uptime = time.Since(s.startTime).Round(time.Second).String()
	}

	writeJSON(w, r, s.logger, http.StatusOK, status)
}
