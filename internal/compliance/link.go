package compliance

import "github.com/jcferry08/dwelltime/internal/feeds"

// Link joins each reduced activity event to its appointment and order records
// via left-outer lookups keyed by the canonical shipment identifier. An
// unmatched side leaves the corresponding record absent, not an error.
//
// Lookup tables keep the first record per canonical identifier; records with
// no usable identifier never enter a table, so an absent key cannot join.
func Link(reduced []feeds.ActivityEvent, appointments []feeds.AppointmentRecord, orders []feeds.OrderRecord) []LinkedShipment {
	appointmentByID := make(map[string]feeds.AppointmentRecord, len(appointments))
	for i := range appointments {
		id := appointments[i].CanonicalShipmentID()
		if id == "" {
			continue
		}

		if _, seen := appointmentByID[id]; !seen {
			appointmentByID[id] = appointments[i]
		}
	}

	orderByID := make(map[string]feeds.OrderRecord, len(orders))
	for i := range orders {
		id := orders[i].CanonicalShipmentID()
		if id == "" {
			continue
		}

		if _, seen := orderByID[id]; !seen {
			orderByID[id] = orders[i]
		}
	}

	linked := make([]LinkedShipment, 0, len(reduced))

	for i := range reduced {
		id := reduced[i].CanonicalShipmentID()

		ls := LinkedShipment{
			CanonicalID: id,
			Event:       reduced[i],
		}

		if appointment, ok := appointmentByID[id]; ok {
			ls.Appointment = appointment
			ls.HasAppointment = true
		}

		if order, ok := orderByID[id]; ok {
			ls.Order = order
			ls.HasOrder = true
		}

		linked = append(linked, ls)
	}

	return linked
}
