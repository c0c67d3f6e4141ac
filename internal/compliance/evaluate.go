package compliance

import (
	"math"
	"time"

	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/timeparse"
)

// Evaluate applies the punctuality and dwell rules to a linked shipment with
// a known appointment instant. The caller guarantees carrier and appointment
// are present; Evaluate derives the remaining fields together so no record
// ever carries a partially-derived state.
//
// now is the evaluation instant used when the shipment has no known check-in:
// a shipment not yet checked in is provisionally classified against it.
func Evaluate(ls LinkedShipment, now time.Time) Record {
	appointmentAt := ls.Order.AppointmentAt
	checkedInAt := ls.CheckedInAt()

	grace := standardGrace
	if ls.Appointment.AppointmentType == feeds.AppointmentTypeLiveLoad {
		grace = liveLoadGrace
	}

	requiredBy := appointmentAt.Add(grace)

	comparison := now
	if timeparse.Known(checkedInAt) {
		comparison = checkedInAt
	}

	// Strictly after: arriving exactly at the deadline is on time.
	status := StatusOnTime
	if comparison.After(requiredBy) {
		status = StatusLate
	}

	var dwell float64

	if timeparse.Known(ls.Event.LoadedAt) {
		switch {
		case status == StatusLate && timeparse.Known(checkedInAt):
			dwell = ls.Event.LoadedAt.Sub(checkedInAt).Hours()
		case status == StatusOnTime:
			dwell = ls.Event.LoadedAt.Sub(appointmentAt).Hours()
		}
		// Late with no check-in leaves dwell at zero.
	}

	if dwell < 0 {
		dwell = 0
	}

	dwell = math.Round(dwell*100) / 100

	_, isoWeek := appointmentAt.ISOWeek()

	return Record{
		ShipmentID:      ls.CanonicalID,
		AppointmentType: ls.Appointment.AppointmentType,
		OrderStatus:     ls.Appointment.OrderStatus,
		Carrier:         ls.Appointment.Carrier,
		AppointmentAt:   appointmentAt,
		CheckedInAt:     checkedInAt,
		CheckedOutAt:    ls.Event.CheckedOutAt,
		LoadedAt:        ls.Event.LoadedAt,
		VisitType:       ls.Event.VisitType,
		RequiredBy:      requiredBy,
		Compliance:      status,
		DwellHours:      dwell,
		ScheduledDate:   appointmentAt.Format("2006-01-02"),
		Month:           appointmentAt.Format("Jan"),
		ISOWeek:         isoWeek,
	}
}
