package api

import (
	"net/http"
	"strings"

	"github.com/jcferry08/dwelltime/internal/api/middleware"
)

// registerPublicRoute registers a handler and marks its path as exempt from
// authentication and rate limiting. The pattern may carry a Go 1.22 method
// prefix ("GET /ping"); only the path portion goes into the public registry.
func registerPublicRoute(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.HandleFunc(pattern, handler)

	path := pattern
	if idx := strings.Index(pattern, " "); idx != -1 {
		path = pattern[idx+1:]
	}

	middleware.RegisterPublicEndpoint(path)
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health endpoints stay public so load balancers can probe them.
	registerPublicRoute(mux, "GET /ping", s.handlePing)
	registerPublicRoute(mux, "GET /ready", s.handleReady)
	registerPublicRoute(mux, "GET /health", s.handleHealth)

	// Compliance pipeline endpoints, authenticated.
	mux.HandleFunc("POST /api/v1/compliance/runs", s.handleComputeRun)
	mux.HandleFunc("POST /api/v1/compliance/runs/csv", s.handleComputeRunCSV)
	mux.HandleFunc("GET /api/v1/compliance/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/v1/compliance/runs/{id}/records", s.handleListRecords)
	mux.HandleFunc("GET /api/v1/compliance/runs/{id}/summary", s.handleGetSummary)

	// Catch-all for unmatched paths.
	registerPublicRoute(mux, "/", s.handleNotFound)
}

// handleNotFound returns a 404 problem for unmatched routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, s.logger, NotFound("The requested resource was not found"))
}
