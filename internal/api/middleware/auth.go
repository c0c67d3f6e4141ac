package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/jcferry08/dwelltime/internal/storage"
)

// publicEndpoints holds paths that bypass authentication and rate limiting
// (health probes). Registered at route-setup time, read on every request.
var publicEndpoints = struct {
	mu    sync.RWMutex
	paths map[string]bool
}{paths: make(map[string]bool)}

// RegisterPublicEndpoint marks a path as bypassing auth and rate limiting.
func RegisterPublicEndpoint(path string) {
	publicEndpoints.mu.Lock()
	defer publicEndpoints.mu.Unlock()

	publicEndpoints.paths[path] = true
}

// IsPublicEndpoint reports whether a path bypasses auth and rate limiting.
func IsPublicEndpoint(path string) bool {
	publicEndpoints.mu.RLock()
	defer publicEndpoints.mu.RUnlock()

	return publicEndpoints.paths[path]
}

// apiKeyContextKey is the context key for the authenticated API key.
type apiKeyContextKey struct{}

// GetAPIKey extracts the authenticated key from the request context.
func GetAPIKey(ctx context.Context) (*storage.Key, bool) {
	key, ok := ctx.Value(apiKeyContextKey{}).(*storage.Key)

	return key, ok
}

// AuthenticateAPIKey creates a middleware that authenticates requests via
// API key, accepted in the X-API-Key header or as an Authorization bearer
// token. Public endpoints and CORS preflights pass through.
func AuthenticateAPIKey(store storage.KeyStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)

				return
			}

			rawHeader := r.Header.Get("X-API-Key")
			if rawHeader == "" {
				rawHeader = r.Header.Get("Authorization")
			}

			rawKey, err := storage.ParseAPIKey(rawHeader)
			if err != nil {
				writeAuthProblem(w, r, logger, "Missing or malformed API key")

				return
			}

			key, ok := store.Authenticate(rawKey)
			if !ok {
				logger.Warn("API key rejected",
					slog.String("key", storage.MaskKey(rawKey)),
					slog.String("path", r.URL.Path),
					slog.String("correlation_id", GetCorrelationID(r.Context())),
				)

				writeAuthProblem(w, r, logger, "Invalid API key")

				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey{}, key)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthProblem(w http.ResponseWriter, r *http.Request, logger *slog.Logger, detail string) {
	correlationID := GetCorrelationID(r.Context())

	problem := struct {
		Type          string `json:"type"`
		Title         string `json:"title"`
		Status        int    `json:"status"`
		Detail        string `json:"detail"`
		Instance      string `json:"instance"`
		CorrelationID string `json:"correlationId"`
	}{
		Type:          fmt.Sprintf("https://dwelltime.dev/problems/%d", http.StatusUnauthorized),
		Title:         "Unauthorized",
		Status:        http.StatusUnauthorized,
		Detail:        detail,
		Instance:      r.URL.Path,
		CorrelationID: correlationID,
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("WWW-Authenticate", `ApiKey realm="dwelltime"`)
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(problem); err != nil {
		logger.Error("Failed to encode auth problem response",
			slog.Any("error", err),
			slog.String("correlation_id", correlationID),
		)
	}
}
