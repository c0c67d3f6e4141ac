package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jcferry08/dwelltime/internal/compliance"
	"github.com/jcferry08/dwelltime/internal/storage"
)

// handleListRecords returns a filtered page of a run's compliance records.
// Query parameters: date, iso_week, month, carrier, limit, offset.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	runID, problem := pathRunID(r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	query, problem := parseRecordQuery(r.URL.Query())
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	records, total, err := s.runStore.ListRecords(r.Context(), runID, query)
	if err != nil {
		s.writeRunStoreError(w, r, runID, err)

		return
	}

	writeJSON(w, r, s.logger, http.StatusOK, RecordListResponse{
		RunID:   runID.String(),
		Records: toRecordResponses(records),
		Total:   total,
		Limit:   query.Limit,
		Offset:  query.Offset,
	})
}

// parseRecordQuery builds a storage.RecordQuery from URL query parameters.
func parseRecordQuery(values url.Values) (storage.RecordQuery, *ProblemDetail) {
	query := storage.RecordQuery{
		Filter: compliance.RecordFilter{
			Date:    values.Get("date"),
			Month:   values.Get("month"),
			Carrier: values.Get("carrier"),
		},
	}

	var problem *ProblemDetail

	query.Filter.ISOWeek, problem = queryInt(values, "iso_week")
	if problem != nil {
		return storage.RecordQuery{}, problem
	}

	query.Limit, problem = queryInt(values, "limit")
	if problem != nil {
		return storage.RecordQuery{}, problem
	}

	query.Offset, problem = queryInt(values, "offset")
	if problem != nil {
		return storage.RecordQuery{}, problem
	}

	return query, nil
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(values url.Values, name string) (int, *ProblemDetail) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, BadRequest(fmt.Sprintf("Query parameter %q must be an integer, got %q", name, raw))
	}

	return n, nil
}
