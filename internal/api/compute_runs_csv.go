package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/jcferry08/dwelltime/internal/feeds"
)

// handleComputeRunCSV computes and persists a compliance run from three CSV
// uploads, one multipart part per feed, named after the feed.
func (s *Server) handleComputeRunCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	if err := r.ParseMultipartForm(s.config.MaxRequestSize); err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest(fmt.Sprintf("Invalid multipart form: %v", err)))

		return
	}

	defer func() { _ = r.MultipartForm.RemoveAll() }()

	activityPart, problem := formFeed(r, feeds.FeedTrailerActivity)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}
	defer func() { _ = activityPart.Close() }()

	appointmentPart, problem := formFeed(r, feeds.FeedAppointmentView)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}
	defer func() { _ = appointmentPart.Close() }()

	orderPart, problem := formFeed(r, feeds.FeedOrderView)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}
	defer func() { _ = orderPart.Close() }()

	activity, err := feeds.DecodeActivityCSV(activityPart, s.aliases)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, feedProblem(feeds.FeedTrailerActivity, err))

		return
	}

	appointments, err := feeds.DecodeAppointmentCSV(appointmentPart, s.aliases)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, feedProblem(feeds.FeedAppointmentView, err))

		return
	}

	orders, err := feeds.DecodeOrderCSV(orderPart, s.aliases)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, feedProblem(feeds.FeedOrderView, err))

		return
	}

	evaluatedAt, problem := resolveEvaluatedAt(r.FormValue("evaluated_at"))
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	s.computeAndRespond(w, r, activity, appointments, orders, evaluatedAt)
}

// formFeed pulls one named CSV part out of the multipart form.
func formFeed(r *http.Request, name string) (multipart.File, *ProblemDetail) {
	file, _, err := r.FormFile(name)
	if err != nil {
		return nil, BadRequest(fmt.Sprintf("Missing %q file part", name))
	}

	return file, nil
}

// feedProblem maps a decode failure onto the right problem class. Structural
// defects in an otherwise well-formed upload are 422s; anything else on the
// read path is a 400.
func feedProblem(name string, err error) *ProblemDetail {
	if errors.Is(err, feeds.ErrMissingColumn) || errors.Is(err, feeds.ErrEmptyFeed) {
		return UnprocessableEntity(fmt.Sprintf("Feed %q: %v", name, err))
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return BadRequest(fmt.Sprintf("Feed %q: truncated upload", name))
	}

	return BadRequest(fmt.Sprintf("Feed %q: %v", name, err))
}
