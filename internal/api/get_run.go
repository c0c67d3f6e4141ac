package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jcferry08/dwelltime/internal/storage"
)

// handleGetRun fetches a persisted run's stats by ID.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, problem := pathRunID(r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	run, err := s.runStore.GetRun(r.Context(), runID)
	if err != nil {
		s.writeRunStoreError(w, r, runID, err)

		return
	}

	writeJSON(w, r, s.logger, http.StatusOK, RunResponse{
		ID:          run.ID.String(),
		CreatedAt:   run.CreatedAt,
		EvaluatedAt: run.EvaluatedAt,
		Stats:       run.Stats,
	})
}

// pathRunID extracts and validates the {id} path segment.
func pathRunID(r *http.Request) (uuid.UUID, *ProblemDetail) {
	raw := r.PathValue("id")

	runID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, BadRequest(fmt.Sprintf("Invalid run ID %q, expected a UUID", raw))
	}

	return runID, nil
}

// writeRunStoreError maps store failures onto problem responses.
func (s *Server) writeRunStoreError(w http.ResponseWriter, r *http.Request, runID uuid.UUID, err error) {
	if errors.Is(err, storage.ErrRunNotFound) {
		WriteErrorResponse(w, r, s.logger, NotFound(fmt.Sprintf("Run %s does not exist", runID)))

		return
	}

	s.logger.Error("Run store query failed",
		"run_id", runID.String(),
		"error", err)
	WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to query run store"))
}
