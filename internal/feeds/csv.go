package feeds

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcferry08/dwelltime/internal/timeparse"
)

// Feed names used in errors and logs.
const (
	FeedTrailerActivity = "trailer_activity"
	FeedAppointmentView = "appointment_view"
	FeedOrderView       = "order_view"
)

// Canonical column names per feed. The yard management system exports
// uppercase underscore-free headers; the appointment and order views come out
// of the warehouse reporting tool with its own conventions. Site-specific
// deviations are handled by Aliases, not by widening these lists.
const (
	colShipmentID     = "SHIPMENT_ID"
	colVisitType      = "VISIT TYPE"
	colActivityStatus = "ACTIVITY STATUS"
	colLoadedDate     = "LOADED DATE"
	colCheckoutDate   = "CHECKOUT DATE"

	colApptShipment = "Shipment Nbr"
	colApptType     = "Appointment Type"
	colOrderStatus  = "Order Status"
	colCarrier      = "Carrier"
	colCheckedIn    = "Checked In"

	colOrderShipment = "Shipment #"
	colAppointment   = "Appointment"
)

var (
	activityColumns    = []string{colShipmentID, colVisitType, colActivityStatus, colLoadedDate, colCheckoutDate}
	appointmentColumns = []string{colApptShipment, colApptType, colOrderStatus, colCarrier, colCheckedIn}
	orderColumns       = []string{colOrderShipment, colAppointment, colCheckedIn}
)

// Required columns per feed. A feed missing one of these is structurally
// malformed and the run must fail fast; every other per-cell anomaly degrades
// to an absent value instead.
var (
	activityRequired    = []string{colShipmentID, colVisitType, colActivityStatus, colLoadedDate}
	appointmentRequired = []string{colApptShipment, colApptType, colCarrier}
	orderRequired       = []string{colOrderShipment, colAppointment}
)

// ErrMissingColumn indicates a feed export lacks a column the pipeline cannot
// run without. This is the only fatal feed condition.
var ErrMissingColumn = errors.New("required column missing")

// ErrEmptyFeed indicates a feed with no header row at all.
var ErrEmptyFeed = errors.New("feed is empty")

// DecodeActivityCSV decodes the trailer activity feed.
//
// Cell-level problems (unparsable timestamps, unrecognized visit types) are
// absorbed into the models as unknown/Other values. Only a missing required
// column or an unreadable CSV stream returns an error.
func DecodeActivityCSV(r io.Reader, aliases *Aliases) ([]ActivityEvent, error) {
	rows, index, err := decodeFeed(r, FeedTrailerActivity, aliases.activity(), activityRequired)
	if err != nil {
		return nil, err
	}

	events := make([]ActivityEvent, 0, len(rows))
	for _, row := range rows {
		loadedAt, _ := timeparse.Parse(index.cell(row, colLoadedDate))
		checkedOutAt, _ := timeparse.Parse(index.cell(row, colCheckoutDate))

		events = append(events, ActivityEvent{
			ShipmentID:   index.cell(row, colShipmentID),
			VisitType:    ParseVisitType(index.cell(row, colVisitType)),
			Status:       ParseActivityStatus(index.cell(row, colActivityStatus)),
			LoadedAt:     loadedAt,
			CheckedOutAt: checkedOutAt,
		})
	}

	return events, nil
}

// DecodeAppointmentCSV decodes the appointment view feed.
func DecodeAppointmentCSV(r io.Reader, aliases *Aliases) ([]AppointmentRecord, error) {
	rows, index, err := decodeFeed(r, FeedAppointmentView, aliases.appointment(), appointmentRequired)
	if err != nil {
		return nil, err
	}

	records := make([]AppointmentRecord, 0, len(rows))
	for _, row := range rows {
		checkedInAt, _ := timeparse.Parse(index.cell(row, colCheckedIn))

		records = append(records, AppointmentRecord{
			ShipmentID:      index.cell(row, colApptShipment),
			AppointmentType: ParseAppointmentType(index.cell(row, colApptType)),
			OrderStatus:     strings.TrimSpace(index.cell(row, colOrderStatus)),
			Carrier:         strings.TrimSpace(index.cell(row, colCarrier)),
			CheckedInAt:     checkedInAt,
		})
	}

	return records, nil
}

// DecodeOrderCSV decodes the order view feed.
func DecodeOrderCSV(r io.Reader, aliases *Aliases) ([]OrderRecord, error) {
	rows, index, err := decodeFeed(r, FeedOrderView, aliases.order(), orderRequired)
	if err != nil {
		return nil, err
	}

	records := make([]OrderRecord, 0, len(rows))
	for _, row := range rows {
		appointmentAt, _ := timeparse.Parse(index.cell(row, colAppointment))
		checkedInAt, _ := timeparse.Parse(index.cell(row, colCheckedIn))

		records = append(records, OrderRecord{
			ShipmentID:    index.cell(row, colOrderShipment),
			AppointmentAt: appointmentAt,
			CheckedInAt:   checkedInAt,
		})
	}

	return records, nil
}

// columnIndex maps canonical column names to their position in the header row.
type columnIndex map[string]int

// cell returns the row's value for a canonical column, or "" when the column
// is absent (optional columns) or the row is short (ragged exports).
func (idx columnIndex) cell(row []string, column string) string {
	pos, ok := idx[column]
	if !ok || pos >= len(row) {
		return ""
	}

	return row[pos]
}

// decodeFeed reads all CSV rows, resolves the header through the alias table,
// and enforces the feed's required columns.
func decodeFeed(r io.Reader, feed string, aliases map[string]string, required []string) ([][]string, columnIndex, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("feed %q: %w", feed, ErrEmptyFeed)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("feed %q: reading header: %w", feed, err)
	}

	index := make(columnIndex, len(header))
	for pos, raw := range header {
		canonical := resolve(aliases, raw)

		// First occurrence wins for duplicated headers.
		if _, seen := index[canonical]; !seen {
			index[canonical] = pos
		}
	}

	for _, column := range required {
		if _, ok := index[column]; !ok {
			return nil, nil, fmt.Errorf("feed %q: column %q: %w", feed, column, ErrMissingColumn)
		}
	}

	var rows [][]string

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, nil, fmt.Errorf("feed %q: reading row: %w", feed, err)
		}

		rows = append(rows, row)
	}

	return rows, index, nil
}

// activity returns the activity alias table, tolerating a nil receiver.
func (a *Aliases) activity() map[string]string {
	if a == nil {
		return nil
	}

	return a.Activity
}

func (a *Aliases) appointment() map[string]string {
	if a == nil {
		return nil
	}

	return a.Appointment
}

func (a *Aliases) order() map[string]string {
	if a == nil {
		return nil
	}

	return a.Order
}
