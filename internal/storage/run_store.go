package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcferry08/dwelltime/internal/compliance"
	"github.com/jcferry08/dwelltime/internal/feeds"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 1000
)

// ErrRunNotFound is returned when a compliance run does not exist.
var ErrRunNotFound = errors.New("compliance run not found")

// Run is one persisted pipeline invocation.
type Run struct {
	ID          uuid.UUID        `json:"id"`
	CreatedAt   time.Time        `json:"createdAt"`
	EvaluatedAt time.Time        `json:"evaluatedAt"`
	Stats       compliance.Stats `json:"stats"`
}

// RecordQuery narrows and pages a run's compliance records.
type RecordQuery struct {
	Filter compliance.RecordFilter
	Limit  int
	Offset int
}

// normalize clamps pagination to sane bounds.
func (q *RecordQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = defaultRecordLimit
	}

	if q.Limit > maxRecordLimit {
		q.Limit = maxRecordLimit
	}

	if q.Offset < 0 {
		q.Offset = 0
	}
}

// RunStore persists compliance runs and their record tables.
type RunStore interface {
	// SaveRun stores the run and all its records atomically.
	SaveRun(ctx context.Context, run *Run, records []compliance.Record) error
	// GetRun fetches a run's stats by ID.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRecords returns a filtered page of a run's records plus the total
	// matching count.
	ListRecords(ctx context.Context, runID uuid.UUID, query RecordQuery) ([]compliance.Record, int, error)
}

// PostgresRunStore is the production RunStore.
type PostgresRunStore struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPostgresRunStore creates a RunStore over an established connection.
func NewPostgresRunStore(conn *Connection, logger *slog.Logger) *PostgresRunStore {
	return &PostgresRunStore{conn: conn, logger: logger}
}

// SaveRun stores the run row and every record in a single transaction.
func (s *PostgresRunStore) SaveRun(ctx context.Context, run *Run, records []compliance.Record) error {
	tx, err := s.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO compliance_runs (
			id, created_at, evaluated_at,
			activity_events, eligible_events, distinct_shipments,
			appointment_records, order_records,
			dropped_missing_carrier, dropped_missing_appointment, compliance_records
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.CreatedAt, run.EvaluatedAt,
		run.Stats.ActivityEvents, run.Stats.EligibleEvents, run.Stats.DistinctShipments,
		run.Stats.AppointmentRecords, run.Stats.OrderRecords,
		run.Stats.DroppedMissingCarrier, run.Stats.DroppedMissingAppointment, run.Stats.ComplianceRecords,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO compliance_records (
			run_id, shipment_id, appointment_type, order_status, carrier,
			appointment_at, checked_in_at, checked_out_at, loaded_at,
			visit_type, required_by, compliance, dwell_hours,
			scheduled_date, month, iso_week
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}

	defer func() { _ = stmt.Close() }()

	for i := range records {
		r := &records[i]

		_, err = stmt.ExecContext(ctx,
			run.ID, r.ShipmentID, string(r.AppointmentType), r.OrderStatus, r.Carrier,
			r.AppointmentAt, nullTime(r.CheckedInAt), nullTime(r.CheckedOutAt), nullTime(r.LoadedAt),
			string(r.VisitType), r.RequiredBy, string(r.Compliance), r.DwellHours,
			r.ScheduledDate, r.Month, r.ISOWeek,
		)
		if err != nil {
			return fmt.Errorf("inserting record for shipment %s: %w", r.ShipmentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}

	s.logger.Info("compliance run persisted",
		"run_id", run.ID,
		"records", len(records))

	return nil
}

// GetRun fetches a run's stats by ID.
func (s *PostgresRunStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run := &Run{ID: id}

	err := s.conn.DB().QueryRowContext(ctx, `
		SELECT created_at, evaluated_at,
			activity_events, eligible_events, distinct_shipments,
			appointment_records, order_records,
			dropped_missing_carrier, dropped_missing_appointment, compliance_records
		FROM compliance_runs WHERE id = $1`, id,
	).Scan(
		&run.CreatedAt, &run.EvaluatedAt,
		&run.Stats.ActivityEvents, &run.Stats.EligibleEvents, &run.Stats.DistinctShipments,
		&run.Stats.AppointmentRecords, &run.Stats.OrderRecords,
		&run.Stats.DroppedMissingCarrier, &run.Stats.DroppedMissingAppointment, &run.Stats.ComplianceRecords,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("fetching run %s: %w", id, err)
	}

	return run, nil
}

// ListRecords returns a filtered, paginated slice of a run's records along
// with the total matching count.
func (s *PostgresRunStore) ListRecords(ctx context.Context, runID uuid.UUID, query RecordQuery) ([]compliance.Record, int, error) {
	query.normalize()

	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, 0, err
	}

	where, args := buildRecordFilter(runID, query.Filter)

	var total int

	countSQL := "SELECT COUNT(*) FROM compliance_records " + where
	if err := s.conn.DB().QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting records for run %s: %w", runID, err)
	}

	listSQL := fmt.Sprintf(`
		SELECT shipment_id, appointment_type, order_status, carrier,
			appointment_at, checked_in_at, checked_out_at, loaded_at,
			visit_type, required_by, compliance, dwell_hours,
			to_char(scheduled_date, 'YYYY-MM-DD'), month, iso_week
		FROM compliance_records %s
		ORDER BY shipment_id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := s.conn.DB().QueryContext(ctx, listSQL, append(args, query.Limit, query.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing records for run %s: %w", runID, err)
	}

	defer func() { _ = rows.Close() }()

	records := make([]compliance.Record, 0, query.Limit)

	for rows.Next() {
		var (
			r                                  compliance.Record
			appointmentType, visitType, status string
			checkedIn, checkedOut, loaded      sql.NullTime
		)

		err := rows.Scan(
			&r.ShipmentID, &appointmentType, &r.OrderStatus, &r.Carrier,
			&r.AppointmentAt, &checkedIn, &checkedOut, &loaded,
			&visitType, &r.RequiredBy, &status, &r.DwellHours,
			&r.ScheduledDate, &r.Month, &r.ISOWeek,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning record for run %s: %w", runID, err)
		}

		r.AppointmentType = feeds.AppointmentType(appointmentType)
		r.VisitType = feeds.VisitType(visitType)
		r.Compliance = compliance.Status(status)
		r.AppointmentAt = r.AppointmentAt.UTC()
		r.RequiredBy = r.RequiredBy.UTC()
		r.CheckedInAt = timeOrZero(checkedIn)
		r.CheckedOutAt = timeOrZero(checkedOut)
		r.LoadedAt = timeOrZero(loaded)

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating records for run %s: %w", runID, err)
	}

	return records, total, nil
}

// buildRecordFilter assembles the WHERE clause for a record query. Filters
// mirror compliance.FilterRecords so both RunStore implementations agree.
func buildRecordFilter(runID uuid.UUID, f compliance.RecordFilter) (string, []any) {
	clauses := []string{"run_id = $1"}
	args := []any{runID}

	if f.Date != "" {
		args = append(args, f.Date)
		clauses = append(clauses, fmt.Sprintf("scheduled_date = $%d", len(args)))
	}

	if f.ISOWeek != 0 {
		args = append(args, f.ISOWeek)
		clauses = append(clauses, fmt.Sprintf("iso_week = $%d", len(args)))
	}

	if f.Month != "" {
		args = append(args, f.Month)
		clauses = append(clauses, fmt.Sprintf("LOWER(month) = LOWER($%d)", len(args)))
	}

	if f.Carrier != "" {
		args = append(args, f.Carrier)
		clauses = append(clauses, fmt.Sprintf("LOWER(carrier) = LOWER($%d)", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func timeOrZero(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}

	return nt.Time.UTC()
}
