package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/timeparse"
)

// wireEvent is the JSON shape gate systems publish per trailer transaction.
// Timestamps arrive as raw strings in whatever format the site emits.
type wireEvent struct {
	ShipmentID   string `json:"shipmentId"`
	VisitType    string `json:"visitType"`
	Status       string `json:"activityStatus"`
	LoadedAt     string `json:"loadedAt"`
	CheckedOutAt string `json:"checkedOutAt"`
}

// DecodeEvent converts one Kafka message payload into an activity event.
// Timestamp and enum anomalies degrade inside the model; only malformed JSON
// is an error, which the consumer treats as a poison message.
func DecodeEvent(payload []byte) (feeds.ActivityEvent, error) {
	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		return feeds.ActivityEvent{}, fmt.Errorf("decoding activity event: %w", err)
	}

	loadedAt, _ := timeparse.Parse(wire.LoadedAt)
	checkedOutAt, _ := timeparse.Parse(wire.CheckedOutAt)

	return feeds.ActivityEvent{
		ShipmentID:   wire.ShipmentID,
		VisitType:    feeds.ParseVisitType(wire.VisitType),
		Status:       feeds.ParseActivityStatus(wire.Status),
		LoadedAt:     loadedAt,
		CheckedOutAt: checkedOutAt,
	}, nil
}
