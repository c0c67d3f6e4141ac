package api

import (
	"time"

	"github.com/jcferry08/dwelltime/internal/compliance"
	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/timeparse"
)

type (
	// ComputeRunRequest is the payload of POST /api/v1/compliance/runs.
	// Timestamps arrive as raw strings; parsing happens inside the pipeline
	// and unparsable values degrade to unknown instead of rejecting the run.
	ComputeRunRequest struct {
		ActivityEvents  []ActivityEventRequest `json:"activityEvents"`
		AppointmentView []AppointmentRequest   `json:"appointmentView"`
		OrderView       []OrderRequest         `json:"orderView"`

		// EvaluatedAt pins the evaluation instant; empty means server wall
		// clock. Shipments without a check-in classify against this value.
		EvaluatedAt string `json:"evaluatedAt,omitempty"`

		// UseStreamedActivity sources activity events from the Kafka buffer
		// instead of (or merged with) the request body.
		UseStreamedActivity bool `json:"useStreamedActivity,omitempty"`
	}

	// ActivityEventRequest is one yard-gate transaction in the request body.
	ActivityEventRequest struct {
		ShipmentID     string `json:"shipmentId"`
		VisitType      string `json:"visitType"`
		ActivityStatus string `json:"activityStatus"`
		LoadedAt       string `json:"loadedAt,omitempty"`
		CheckedOutAt   string `json:"checkedOutAt,omitempty"`
	}

	// AppointmentRequest is one appointment-view row in the request body.
	AppointmentRequest struct {
		ShipmentID      string `json:"shipmentId"`
		AppointmentType string `json:"appointmentType"`
		OrderStatus     string `json:"orderStatus,omitempty"`
		Carrier         string `json:"carrier"`
		CheckedInAt     string `json:"checkedInAt,omitempty"`
	}

	// OrderRequest is one order-view row in the request body.
	OrderRequest struct {
		ShipmentID    string `json:"shipmentId"`
		AppointmentAt string `json:"appointmentAt,omitempty"`
		CheckedInAt   string `json:"checkedInAt,omitempty"`
	}

	// RunResponse is the payload returned for a computed or fetched run.
	RunResponse struct {
		ID          string           `json:"id"`
		CreatedAt   time.Time        `json:"createdAt"`
		EvaluatedAt time.Time        `json:"evaluatedAt"`
		Stats       compliance.Stats `json:"stats"`
		Records     []RecordResponse `json:"records,omitempty"`
	}

	// RecordResponse is one compliance table row on the wire. Unknown
	// instants serialize as absent fields rather than zero timestamps.
	RecordResponse struct {
		ShipmentID      string     `json:"shipmentId"`
		AppointmentType string     `json:"appointmentType"`
		OrderStatus     string     `json:"orderStatus,omitempty"`
		Carrier         string     `json:"carrier"`
		AppointmentAt   time.Time  `json:"appointmentAt"`
		CheckedInAt     *time.Time `json:"checkedInAt,omitempty"`
		CheckedOutAt    *time.Time `json:"checkedOutAt,omitempty"`
		LoadedAt        *time.Time `json:"loadedAt,omitempty"`
		VisitType       string     `json:"visitType"`
		RequiredBy      time.Time  `json:"requiredBy"`
		Compliance      string     `json:"compliance"`
		DwellHours      float64    `json:"dwellHours"`
		ScheduledDate   string     `json:"scheduledDate"`
		Month           string     `json:"month"`
		ISOWeek         int        `json:"isoWeek"`
	}

	// RecordListResponse is the payload of GET .../runs/{id}/records.
	RecordListResponse struct {
		RunID   string           `json:"runId"`
		Records []RecordResponse `json:"records"`
		Total   int              `json:"total"`
		Limit   int              `json:"limit"`
		Offset  int              `json:"offset"`
	}

	// SummaryResponse is the payload of GET .../runs/{id}/summary.
	SummaryResponse struct {
		RunID   string                    `json:"runId"`
		GroupBy string                    `json:"groupBy"`
		Groups  []compliance.GroupSummary `json:"groups"`
	}

	// HealthStatus is the health check response structure.
	HealthStatus struct {
		Status      string `json:"status"`
		ServiceName string `json:"serviceName"`
		Version     string `json:"version"`
		Uptime      string `json:"uptime,omitempty"`
	}
)

// toActivityEvent maps a wire event onto the domain model.
func (r *ActivityEventRequest) toActivityEvent() feeds.ActivityEvent {
	loadedAt, _ := timeparse.Parse(r.LoadedAt)
	checkedOutAt, _ := timeparse.Parse(r.CheckedOutAt)

	return feeds.ActivityEvent{
		ShipmentID:   r.ShipmentID,
		VisitType:    feeds.ParseVisitType(r.VisitType),
		Status:       feeds.ParseActivityStatus(r.ActivityStatus),
		LoadedAt:     loadedAt,
		CheckedOutAt: checkedOutAt,
	}
}

func (r *AppointmentRequest) toAppointmentRecord() feeds.AppointmentRecord {
	checkedInAt, _ := timeparse.Parse(r.CheckedInAt)

	return feeds.AppointmentRecord{
		ShipmentID:      r.ShipmentID,
		AppointmentType: feeds.ParseAppointmentType(r.AppointmentType),
		OrderStatus:     r.OrderStatus,
		Carrier:         r.Carrier,
		CheckedInAt:     checkedInAt,
	}
}

func (r *OrderRequest) toOrderRecord() feeds.OrderRecord {
	appointmentAt, _ := timeparse.Parse(r.AppointmentAt)
	checkedInAt, _ := timeparse.Parse(r.CheckedInAt)

	return feeds.OrderRecord{
		ShipmentID:    r.ShipmentID,
		AppointmentAt: appointmentAt,
		CheckedInAt:   checkedInAt,
	}
}

// toRecordResponse maps a compliance record onto the wire shape.
func toRecordResponse(r *compliance.Record) RecordResponse {
	return RecordResponse{
		ShipmentID:      r.ShipmentID,
		AppointmentType: string(r.AppointmentType),
		OrderStatus:     r.OrderStatus,
		Carrier:         r.Carrier,
		AppointmentAt:   r.AppointmentAt,
		CheckedInAt:     instantOrNil(r.CheckedInAt),
		CheckedOutAt:    instantOrNil(r.CheckedOutAt),
		LoadedAt:        instantOrNil(r.LoadedAt),
		VisitType:       string(r.VisitType),
		RequiredBy:      r.RequiredBy,
		Compliance:      string(r.Compliance),
		DwellHours:      r.DwellHours,
		ScheduledDate:   r.ScheduledDate,
		Month:           r.Month,
		ISOWeek:         r.ISOWeek,
	}
}

func toRecordResponses(records []compliance.Record) []RecordResponse {
	responses := make([]RecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toRecordResponse(&records[i]))
	}

	return responses
}

func instantOrNil(t time.Time) *time.Time {
	if !timeparse.Known(t) {
		return nil
	}

	return &t
}
