package compliance

import (
	"time"

	"github.com/jcferry08/dwelltime/internal/feeds"
	"github.com/jcferry08/dwelltime/internal/timeparse"
)

// Compute runs the full pipeline over one input batch: filter, reduce, link,
// evaluate. It returns the compliance table (no ordering contract) plus the
// run's drop counts.
//
// Per-record anomalies never abort a run; they degrade to absent values or
// drop the row with a counted, expected outcome. Compute itself cannot fail.
// Structural feed validation happens upstream in the decoding layer.
func Compute(activity []feeds.ActivityEvent, appointments []feeds.AppointmentRecord, orders []feeds.OrderRecord, now time.Time) Result {
	eligible := FilterEligible(activity)
	reduced := ReduceLatest(eligible)
	linked := Link(reduced, appointments, orders)

	stats := Stats{
		ActivityEvents:     len(activity),
		EligibleEvents:     len(eligible),
		DistinctShipments:  len(reduced),
		AppointmentRecords: len(appointments),
		OrderRecords:       len(orders),
	}

	records := make([]Record, 0, len(linked))

	for i := range linked {
		// Mandatory-field filter: a compliance record needs a carrier and a
		// known appointment instant. Missing either drops the shipment.
		if !linked[i].HasAppointment || linked[i].Appointment.Carrier == "" {
			stats.DroppedMissingCarrier++

			continue
		}

		if !linked[i].HasOrder || !timeparse.Known(linked[i].Order.AppointmentAt) {
			stats.DroppedMissingAppointment++

			continue
		}

		records = append(records, Evaluate(linked[i], now))
	}

	stats.ComplianceRecords = len(records)

	return Result{Records: records, Stats: stats}
}
