package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jcferry08/dwelltime/internal/compliance"
	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/storage"
	"github.com/jcferry08/dwelltime/internal/timeparse"
)

// errStreamingDisabled is returned when a run requests streamed activity but
// no ingest buffer is wired in.
var errStreamingDisabled = errors.New("streamed activity is not configured")

// handleComputeRun computes and persists a compliance run from a JSON batch.
func (s *Server) handleComputeRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var req ComputeRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(fmt.Sprintf("Invalid request body: %v", err)))

		return
	}

	evaluatedAt, problem := resolveEvaluatedAt(req.EvaluatedAt)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	activity := make([]feeds.ActivityEvent, 0, len(req.ActivityEvents))
	for i := range req.ActivityEvents {
		activity = append(activity, req.ActivityEvents[i].toActivityEvent())
	}

	if req.UseStreamedActivity {
		if s.activity == nil {
			WriteErrorResponse(w, r, s.logger, BadRequest(errStreamingDisabled.Error()))

			return
		}

		activity = append(activity, s.activity.Snapshot()...)
	}

	appointments := make([]feeds.AppointmentRecord, 0, len(req.AppointmentView))
	for i := range req.AppointmentView {
		appointments = append(appointments, req.AppointmentView[i].toAppointmentRecord())
	}

	orders := make([]feeds.OrderRecord, 0, len(req.OrderView))
	for i := range req.OrderView {
		orders = append(orders, req.OrderView[i].toOrderRecord())
	}

	s.computeAndRespond(w, r, activity, appointments, orders, evaluatedAt)
}

// resolveEvaluatedAt parses the optional evaluation instant. Empty means the
// server wall clock; an unparsable value is a client error rather than a
// silently shifted deadline.
func resolveEvaluatedAt(raw string) (time.Time, *ProblemDetail) {
	if raw == "" {
		return time.Now().UTC(), nil
	}

	evaluatedAt, ok := timeparse.Parse(raw)
	if !ok {
		return time.Time{}, BadRequest(fmt.Sprintf("Unparsable evaluatedAt value: %q", raw))
	}

	return evaluatedAt, nil
}

// computeAndRespond runs the pipeline over decoded feeds, persists the run,
// and writes the 201 response. Shared by the JSON and CSV entry points.
func (s *Server) computeAndRespond(
	w http.ResponseWriter,
	r *http.Request,
	activity []feeds.ActivityEvent,
	appointments []feeds.AppointmentRecord,
	orders []feeds.OrderRecord,
	evaluatedAt time.Time,
) {
	result := compliance.Compute(activity, appointments, orders, evaluatedAt)

	run := &storage.Run{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		EvaluatedAt: evaluatedAt,
		Stats:       result.Stats,
	}

	if err := s.runStore.SaveRun(r.Context(), run, result.Records); err != nil {
		s.logger.Error("Failed to persist compliance run",
			slog.String("run_id", run.ID.String()),
			slog.Any("error", err),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to persist compliance run"))

		return
	}

	s.logger.Info("Compliance run computed",
		slog.String("run_id", run.ID.String()),
		slog.Int("activity_events", result.Stats.ActivityEvents),
		slog.Int("compliance_records", result.Stats.ComplianceRecords),
	)

	writeJSON(w, r, s.logger, http.StatusCreated, RunResponse{
		ID:          run.ID.String(),
		CreatedAt:   run.CreatedAt,
		EvaluatedAt: run.EvaluatedAt,
		Stats:       run.Stats,
		Records:     toRecordResponses(result.Records),
	})
}
