package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jcferry08/dwelltime/internal/compliance"
)

// summaryPageSize matches the store's maximum page so the aggregation walks
// large runs in as few round trips as possible.
const summaryPageSize = 1000

// handleGetSummary aggregates a run's records along a grouping dimension.
// Query parameters: group_by (compliance, carrier, dwell_bucket) plus the
// same filters as the records endpoint.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	runID, problem := pathRunID(r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	groupBy := compliance.GroupBy(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = compliance.GroupByCompliance
	}

	query, problem := parseRecordQuery(r.URL.Query())
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	// Aggregation covers every matching record, so pagination parameters on
	// this endpoint are ignored and the full filtered set is paged through.
	query.Limit = summaryPageSize
	query.Offset = 0

	var records []compliance.Record

	for {
		page, total, err := s.runStore.ListRecords(r.Context(), runID, query)
		if err != nil {
			s.writeRunStoreError(w, r, runID, err)

			return
		}

		records = append(records, page...)
		query.Offset += len(page)

		if len(page) == 0 || query.Offset >= total {
			break
		}
	}

	groups, err := compliance.Summarize(records, groupBy)
	if err != nil {
		if errors.Is(err, compliance.ErrUnknownGroupBy) {
			WriteErrorResponse(w, r, s.logger, BadRequest(fmt.Sprintf(
				"Unknown group_by %q, expected one of %q, %q, %q",
				groupBy, compliance.GroupByCompliance, compliance.GroupByCarrier, compliance.GroupByDwellBucket,
			)))

			return
		}

		s.logger.Error("Summary aggregation failed",
			"run_id", runID.String(),
			"error", err)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to aggregate records"))

		return
	}

	writeJSON(w, r, s.logger, http.StatusOK, SummaryResponse{
		RunID:   runID.String(),
		GroupBy: string(groupBy),
		Groups:  groups,
	})
}
