// Package ingest consumes yard-activity events from Kafka and buffers them so
// a compliance run can be computed from the streamed feed instead of a CSV
// upload. Consumption is at-least-once: offsets commit only after an event
// lands in the buffer.
package ingest

import (
	"errors"

	"github.com/jcferry08/dwelltime/internal/config"
)

const (
	defaultTopic       = "yard.activity.events"
	defaultGroupID     = "dwelltime-ingest"
	defaultBufferLimit = 100_000
)

// ErrNoBrokers is returned when Kafka ingestion is enabled without brokers.
var ErrNoBrokers = errors.New("kafka brokers cannot be empty")

// Config holds Kafka consumer configuration.
type Config struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string

	// BufferLimit caps the in-memory event buffer; older events are evicted
	// first once the cap is reached.
	BufferLimit int
}

// LoadConfig loads Kafka configuration from environment variables. Ingestion
// is off unless DWELLTIME_KAFKA_ENABLED is set.
func LoadConfig() *Config {
	return &Config{
		Enabled:     config.GetEnvBool("DWELLTIME_KAFKA_ENABLED", false),
		Brokers:     config.ParseCommaSeparatedList(config.GetEnvStr("DWELLTIME_KAFKA_BROKERS", "")),
		Topic:       config.GetEnvStr("DWELLTIME_KAFKA_TOPIC", defaultTopic),
		GroupID:     config.GetEnvStr("DWELLTIME_KAFKA_GROUP_ID", defaultGroupID),
		BufferLimit: config.GetEnvInt("DWELLTIME_KAFKA_BUFFER_LIMIT", defaultBufferLimit),
	}
}

// Validate checks the configuration when ingestion is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}

	return nil
}
