package ingest

import (
	"sync"

	"github.com/jcferry08/dwelltime/internal/feeds"
)

// Buffer accumulates streamed activity events between compliance runs. It is
// safe for one consumer goroutine appending while API handlers snapshot.
type Buffer struct {
	mu     sync.RWMutex
	events []feeds.ActivityEvent
	limit  int
}

// NewBuffer creates a buffer holding at most limit events.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = defaultBufferLimit
	}

	return &Buffer{limit: limit}
}

// Append adds an event, evicting the oldest once the cap is reached. The
// reducer keeps the latest event per shipment anyway, so dropping the oldest
// is the loss-minimizing policy.
func (b *Buffer) Append(event feeds.ActivityEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) >= b.limit {
		b.events = b.events[1:]
	}

	b.events = append(b.events, event)
}

// Snapshot returns a copy of the buffered events in arrival order.
func (b *Buffer) Snapshot() []feeds.ActivityEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]feeds.ActivityEvent(nil), b.events...)
}

// Len reports the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.events)
}
