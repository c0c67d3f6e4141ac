package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVisitType(t *testing.T) {
	tests := []struct {
		input string
		want  VisitType
	}{
		{"Live Load", VisitTypeLiveLoad},
		{"LIVE LOAD", VisitTypeLiveLoad},
		{"liveload", VisitTypeLiveLoad},
		{"Pickup Load", VisitTypePickupLoad},
		{"Pickup Empty", VisitTypePickupEmpty},
		{"Drop Empty", VisitTypeOther},
		{"Bobtail", VisitTypeOther},
		{"", VisitTypeOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseVisitType(tt.input), "input %q", tt.input)
	}
}

func TestParseActivityStatus(t *testing.T) {
	assert.Equal(t, ActivityStatusClosed, ParseActivityStatus("Closed"))
	assert.Equal(t, ActivityStatusClosed, ParseActivityStatus("CLOSED "))
	assert.Equal(t, ActivityStatusOther, ParseActivityStatus("Open"))
	assert.Equal(t, ActivityStatusOther, ParseActivityStatus(""))
}

func TestParseAppointmentType(t *testing.T) {
	assert.Equal(t, AppointmentTypeLiveLoad, ParseAppointmentType("Live Load"))
	assert.Equal(t, AppointmentTypeOther, ParseAppointmentType("Drop Load"))
	assert.Equal(t, AppointmentTypeOther, ParseAppointmentType(""))
}

func TestActivityEventEligible(t *testing.T) {
	tests := []struct {
		name  string
		event ActivityEvent
		want  bool
	}{
		{
			name:  "closed live load with shipment",
			event: ActivityEvent{ShipmentID: "4500123876", VisitType: VisitTypeLiveLoad, Status: ActivityStatusClosed},
			want:  true,
		},
		{
			name:  "closed pickup empty with shipment",
			event: ActivityEvent{ShipmentID: "4500123876", VisitType: VisitTypePickupEmpty, Status: ActivityStatusClosed},
			want:  true,
		},
		{
			name:  "missing shipment id",
			event: ActivityEvent{VisitType: VisitTypeLiveLoad, Status: ActivityStatusClosed},
			want:  false,
		},
		{
			name:  "whitespace-only shipment id",
			event: ActivityEvent{ShipmentID: "   ", VisitType: VisitTypeLiveLoad, Status: ActivityStatusClosed},
			want:  false,
		},
		{
			name:  "not closed",
			event: ActivityEvent{ShipmentID: "4500123876", VisitType: VisitTypeLiveLoad, Status: ActivityStatusOther},
			want:  false,
		},
		{
			name:  "ineligible visit type",
			event: ActivityEvent{ShipmentID: "4500123876", VisitType: VisitTypeOther, Status: ActivityStatusClosed},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Eligible())
		})
	}
}
