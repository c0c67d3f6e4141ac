package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter decides whether a request from a given client may proceed.
type RateLimiter interface {
	// Allow reports whether the client identified by key may proceed.
	Allow(key string) bool
}

// InMemoryRateLimiter applies a token-bucket limit per client key with a
// background sweep evicting idle buckets.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	limit rate.Limit
	burst int

	idleTimeout time.Duration
	maxClients  int
	done        chan struct{}
	closeOnce   sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInMemoryRateLimiter creates a limiter from config and starts its
// cleanup goroutine. Callers must Close it to stop the goroutine.
func NewInMemoryRateLimiter(cfg *Config) *InMemoryRateLimiter {
	l := &InMemoryRateLimiter{
		clients:     make(map[string]*clientLimiter),
		limit:       rate.Limit(cfg.RequestsPerSecond),
		burst:       cfg.Burst,
		idleTimeout: cfg.IdleTimeout,
		maxClients:  cfg.MaxClients,
		done:        make(chan struct{}),
	}

	go l.cleanupLoop(cfg.CleanupInterval)

	return l
}

// Allow reports whether the client may proceed, creating its bucket on first
// sight. When the client table is full, unseen clients are rejected rather
// than growing memory without bound.
func (l *InMemoryRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= l.maxClients {
			return false
		}

		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}

	client.lastSeen = time.Now()

	return client.limiter.Allow()
}

// Close stops the cleanup goroutine.
func (l *InMemoryRateLimiter) Close() error {
	l.closeOnce.Do(func() { close(l.done) })

	return nil
}

func (l *InMemoryRateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *InMemoryRateLimiter) evictIdle() {
	cutoff := time.Now().Add(-l.idleTimeout)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, client := range l.clients {
		if client.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// RateLimit creates a middleware that applies the limiter per client.
// Authenticated requests are keyed by API key ID, anonymous ones by remote
// IP. Public endpoints and preflights bypass the limiter.
func RateLimit(limiter RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)

				return
			}

			key := clientKey(r)

			if !limiter.Allow(key) {
				correlationID := GetCorrelationID(r.Context())

				logger.Warn("request rate limited",
					slog.String("client", key),
					slog.String("path", r.URL.Path),
					slog.String("correlation_id", correlationID),
				)

				problem := struct {
					Type          string `json:"type"`
					Title         string `json:"title"`
					Status        int    `json:"status"`
					Detail        string `json:"detail"`
					Instance      string `json:"instance"`
					CorrelationID string `json:"correlationId"`
				}{
					Type:          fmt.Sprintf("https://dwelltime.dev/problems/%d", http.StatusTooManyRequests),
					Title:         "Too Many Requests",
					Status:        http.StatusTooManyRequests,
					Detail:        "Request rate limit exceeded, retry later",
					Instance:      r.URL.Path,
					CorrelationID: correlationID,
				}

				w.Header().Set("Content-Type", "application/problem+json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)

				if err := json.NewEncoder(w).Encode(problem); err != nil {
					logger.Error("Failed to encode rate limit response", slog.Any("error", err))
				}

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the request's client for rate limiting.
func clientKey(r *http.Request) string {
	if key, ok := GetAPIKey(r.Context()); ok {
		return "key:" + key.ID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}

	return "ip:" + host
}
