// Package feeds provides domain models and decoding for the three logistics
// event feeds consumed by the compliance pipeline: trailer-yard activity,
// appointment scheduling, and order/shipment metadata.
//
// These are pure domain models without JSON tags. The API layer defines its
// own request types with raw string timestamps and maps onto these.
//
// Timestamp fields use the zero time.Time to mean "unknown" (see the
// timeparse package); no field on any model is a pointer.
package feeds

import (
	"strings"
	"time"

	"github.com/jcferry08/dwelltime/internal/canonicalization"
)

type (
	// VisitType classifies a yard-gate transaction by what the trailer came
	// to do. Only load/pickup visits are relevant to compliance; everything
	// else (empty drops, bobtails, maintenance moves) collapses to Other.
	VisitType string

	// ActivityStatus is the lifecycle state of a yard-gate transaction.
	// Only Closed transactions represent a completed visit; open or
	// cancelled ones collapse to Other.
	ActivityStatus string

	// AppointmentType drives the grace-period rule: live loads get a short
	// window, drop/pickup appointments get a full calendar day.
	AppointmentType string

	// ActivityEvent is one yard-gate transaction from the trailer activity feed.
	ActivityEvent struct {
		// ShipmentID is the raw identifier as exported by the yard system.
		// May be empty (events without a shipment never link).
		ShipmentID string

		// VisitType is the normalized visit classification.
		VisitType VisitType

		// Status is the normalized transaction lifecycle state.
		Status ActivityStatus

		// LoadedAt is when loading completed. Zero when unknown.
		LoadedAt time.Time

		// CheckedOutAt is when the trailer left the gate. Zero when unknown.
		CheckedOutAt time.Time
	}

	// AppointmentRecord is one scheduling entry from the appointment view.
	AppointmentRecord struct {
		ShipmentID      string
		AppointmentType AppointmentType
		OrderStatus     string

		// Carrier is required for a valid compliance record; shipments whose
		// appointment carries no carrier are dropped after linkage.
		Carrier string

		// CheckedInAt is when the driver arrived. Zero when unknown.
		CheckedInAt time.Time
	}

	// OrderRecord is one order/delivery entry from the order view.
	OrderRecord struct {
		ShipmentID string

		// AppointmentAt is the contractual appointment instant; required for
		// a valid compliance record. Zero when unknown.
		AppointmentAt time.Time

		// CheckedInAt may duplicate the appointment feed's value; when known
		// it overrides it during linkage.
		CheckedInAt time.Time
	}
)

const (
	// VisitTypeLiveLoad is a trailer loaded while the driver waits.
	VisitTypeLiveLoad VisitType = "Live Load"

	// VisitTypePickupLoad is a pre-loaded trailer picked up from the yard.
	VisitTypePickupLoad VisitType = "Pickup Load"

	// VisitTypePickupEmpty is an empty trailer picked up from the yard.
	VisitTypePickupEmpty VisitType = "Pickup Empty"

	// VisitTypeOther covers every visit classification not relevant to
	// load/pickup compliance.
	VisitTypeOther VisitType = "Other"
)

const (
	// ActivityStatusClosed marks a completed yard transaction.
	ActivityStatusClosed ActivityStatus = "Closed"

	// ActivityStatusOther covers open, cancelled, and unrecognized states.
	ActivityStatusOther ActivityStatus = "Other"
)

const (
	// AppointmentTypeLiveLoad gets the 15-minute grace window.
	AppointmentTypeLiveLoad AppointmentType = "Live Load"

	// AppointmentTypeOther gets the 24-hour grace window.
	AppointmentTypeOther AppointmentType = "Other"
)

// ParseVisitType normalizes a raw feed spelling into a VisitType.
// Matching is case-insensitive and tolerant of squeezed spacing
// ("LIVE LOAD", "liveload" and "Live Load" all parse to VisitTypeLiveLoad).
// Unrecognized values collapse to VisitTypeOther.
func ParseVisitType(raw string) VisitType {
	switch squeeze(raw) {
	case "liveload":
		return VisitTypeLiveLoad
	case "pickupload":
		return VisitTypePickupLoad
	case "pickupempty":
		return VisitTypePickupEmpty
	default:
		return VisitTypeOther
	}
}

// ParseActivityStatus normalizes a raw feed spelling into an ActivityStatus.
// Unrecognized values collapse to ActivityStatusOther.
func ParseActivityStatus(raw string) ActivityStatus {
	if squeeze(raw) == "closed" {
		return ActivityStatusClosed
	}

	return ActivityStatusOther
}

// ParseAppointmentType normalizes a raw feed spelling into an AppointmentType.
// Unrecognized values collapse to AppointmentTypeOther.
func ParseAppointmentType(raw string) AppointmentType {
	if squeeze(raw) == "liveload" {
		return AppointmentTypeLiveLoad
	}

	return AppointmentTypeOther
}

// squeeze lowercases raw and removes all spaces so feed spellings that differ
// only in case or spacing compare equal.
func squeeze(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "")
}

// CountsTowardCompliance reports whether the visit type is in the allowed set
// for linkage (live load, pickup load, pickup empty).
func (vt VisitType) CountsTowardCompliance() bool {
	switch vt {
	case VisitTypeLiveLoad, VisitTypePickupLoad, VisitTypePickupEmpty:
		return true
	case VisitTypeOther:
		return false
	default:
		return false
	}
}

// Eligible reports whether the event satisfies the three-part eligibility
// predicate for linkage: shipment identifier present (after canonicalization),
// transaction Closed, and a visit type that counts toward compliance.
func (e *ActivityEvent) Eligible() bool {
	return canonicalization.ShipmentID(e.ShipmentID) != "" &&
		e.Status == ActivityStatusClosed &&
		e.VisitType.CountsTowardCompliance()
}

// CanonicalShipmentID returns the canonical join key for this event.
func (e *ActivityEvent) CanonicalShipmentID() string {
	return canonicalization.ShipmentID(e.ShipmentID)
}

// CanonicalShipmentID returns the canonical join key for this record.
func (r *AppointmentRecord) CanonicalShipmentID() string {
	return canonicalization.ShipmentID(r.ShipmentID)
}

// CanonicalShipmentID returns the canonical join key for this record.
func (r *OrderRecord) CanonicalShipmentID() string {
	return canonicalization.ShipmentID(r.ShipmentID)
}
