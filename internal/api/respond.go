package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jcferry08/dwelltime/internal/api/middleware"
)

// writeJSON writes a JSON response with the given status code. Encoding
// failures after the header is written can only be logged.
func writeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.Any("encode_error", err),
		)
	}
}
