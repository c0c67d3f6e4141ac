package ingest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcferry08/dwelltime/internal/feeds"
)

func TestDecodeEvent(t *testing.T) {
	payload := []byte(`{
		"shipmentId": "4500123876",
		"visitType": "Live Load",
		"activityStatus": "CLOSED",
		"loadedAt": "01-03-2024 09:30",
		"checkedOutAt": "2024-03-01T09:45:00Z"
	}`)

	event, err := DecodeEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, "4500123876", event.ShipmentID)
	assert.Equal(t, feeds.VisitTypeLiveLoad, event.VisitType)
	assert.Equal(t, feeds.ActivityStatusClosed, event.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), event.LoadedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 45, 0, 0, time.UTC), event.CheckedOutAt)
}

func TestDecodeEvent_AnomaliesDegrade(t *testing.T) {
	payload := []byte(`{
		"shipmentId": "",
		"visitType": "Bobtail",
		"activityStatus": "Open",
		"loadedAt": "garbage"
	}`)

	event, err := DecodeEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, feeds.VisitTypeOther, event.VisitType)
	assert.Equal(t, feeds.ActivityStatusOther, event.Status)
	assert.True(t, event.LoadedAt.IsZero())
	assert.False(t, event.Eligible())
}

func TestDecodeEvent_MalformedJSON(t *testing.T) {
	_, err := DecodeEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestBuffer_AppendAndSnapshot(t *testing.T) {
	buffer := NewBuffer(10)

	buffer.Append(feeds.ActivityEvent{ShipmentID: "A"})
	buffer.Append(feeds.ActivityEvent{ShipmentID: "B"})

	snapshot := buffer.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "A", snapshot[0].ShipmentID)
	assert.Equal(t, "B", snapshot[1].ShipmentID)

	// Snapshot is a copy, later appends don't alias it.
	buffer.Append(feeds.ActivityEvent{ShipmentID: "C"})
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 3, buffer.Len())
}

func TestBuffer_EvictsOldestAtCap(t *testing.T) {
	buffer := NewBuffer(3)

	for _, id := range []string{"A", "B", "C", "D"} {
		buffer.Append(feeds.ActivityEvent{ShipmentID: id})
	}

	snapshot := buffer.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "B", snapshot[0].ShipmentID)
	assert.Equal(t, "D", snapshot[2].ShipmentID)
}

func TestBuffer_ConcurrentAppend(t *testing.T) {
	buffer := NewBuffer(10_000)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(worker int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				buffer.Append(feeds.ActivityEvent{ShipmentID: fmt.Sprintf("%d-%d", worker, j)})
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 800, buffer.Len())
}

func TestConfigValidate(t *testing.T) {
	disabled := &Config{Enabled: false}
	assert.NoError(t, disabled.Validate())

	enabledNoBrokers := &Config{Enabled: true}
	assert.ErrorIs(t, enabledNoBrokers.Validate(), ErrNoBrokers)

	enabled := &Config{Enabled: true, Brokers: []string{"localhost:9092"}}
	assert.NoError(t, enabled.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DWELLTIME_KAFKA_ENABLED", "true")
	t.Setenv("DWELLTIME_KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("DWELLTIME_KAFKA_TOPIC", "yard.events")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Brokers)
	assert.Equal(t, "yard.events", cfg.Topic)
	assert.Equal(t, defaultGroupID, cfg.GroupID)
	assert.Equal(t, defaultBufferLimit, cfg.BufferLimit)
}
