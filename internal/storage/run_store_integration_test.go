package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/jcferry08/dwelltime/internal/compliance"
	"github.com/jcferry08/dwelltime/internal/config"
	"github.com/jcferry08/dwelltime/internal/feeds"
)

func TestPostgresRunStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB := config.SetupTestDatabase(ctx, t)
	t.Cleanup(func() {
		_ = testDB.Connection.Close()
		_ = testcontainers.TerminateContainer(testDB.Container)
	})

	conn, err := Connect(ctx, NewConfig(testDB.URL), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.HealthCheck(ctx))

	store := NewPostgresRunStore(conn, testLogger())

	evaluatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &Run{
		ID:          uuid.New(),
		CreatedAt:   evaluatedAt,
		EvaluatedAt: evaluatedAt,
		Stats: compliance.Stats{
			ActivityEvents:            4,
			EligibleEvents:            3,
			DistinctShipments:         2,
			AppointmentRecords:        2,
			OrderRecords:              2,
			DroppedMissingCarrier:     1,
			DroppedMissingAppointment: 0,
			ComplianceRecords:         2,
		},
	}

	records := []compliance.Record{
		{
			ShipmentID:      "4500123876",
			AppointmentType: feeds.AppointmentTypeLiveLoad,
			OrderStatus:     "Shipped",
			Carrier:         "SWIFT",
			AppointmentAt:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			CheckedInAt:     time.Date(2024, 3, 1, 8, 10, 0, 0, time.UTC),
			LoadedAt:        time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			VisitType:       feeds.VisitTypeLiveLoad,
			RequiredBy:      time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC),
			Compliance:      compliance.StatusOnTime,
			DwellHours:      1.5,
			ScheduledDate:   "2024-03-01",
			Month:           "Mar",
			ISOWeek:         9,
		},
		{
			ShipmentID:      "4500123877",
			AppointmentType: feeds.AppointmentTypeOther,
			Carrier:         "KNIGHT",
			AppointmentAt:   time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
			VisitType:       feeds.VisitTypePickupLoad,
			RequiredBy:      time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
			Compliance:      compliance.StatusLate,
			DwellHours:      0,
			ScheduledDate:   "2024-03-04",
			Month:           "Mar",
			ISOWeek:         10,
		},
	}

	t.Run("save and fetch run", func(t *testing.T) {
		require.NoError(t, store.SaveRun(ctx, run, records))

		fetched, err := store.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.Stats, fetched.Stats)
		assert.True(t, fetched.EvaluatedAt.Equal(evaluatedAt))
	})

	t.Run("duplicate save rolls back", func(t *testing.T) {
		err := store.SaveRun(ctx, run, records)
		require.Error(t, err)

		// The failed save must not have duplicated records.
		_, total, err := store.ListRecords(ctx, run.ID, RecordQuery{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("list records round-trips fields", func(t *testing.T) {
		got, total, err := store.ListRecords(ctx, run.ID, RecordQuery{})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Len(t, got, 2)

		// Ordered by shipment_id.
		first := got[0]
		assert.Equal(t, "4500123876", first.ShipmentID)
		assert.Equal(t, feeds.AppointmentTypeLiveLoad, first.AppointmentType)
		assert.Equal(t, "SWIFT", first.Carrier)
		assert.Equal(t, compliance.StatusOnTime, first.Compliance)
		assert.Equal(t, 1.5, first.DwellHours)
		assert.Equal(t, "2024-03-01", first.ScheduledDate)
		assert.Equal(t, "Mar", first.Month)
		assert.Equal(t, 9, first.ISOWeek)
		assert.True(t, first.CheckedInAt.Equal(records[0].CheckedInAt))
		assert.True(t, first.LoadedAt.Equal(records[0].LoadedAt))
		assert.True(t, first.CheckedOutAt.IsZero(), "NULL timestamps load as zero")

		second := got[1]
		assert.Equal(t, "4500123877", second.ShipmentID)
		assert.True(t, second.CheckedInAt.IsZero())
	})

	t.Run("list with filters", func(t *testing.T) {
		got, total, err := store.ListRecords(ctx, run.ID, RecordQuery{
			Filter: compliance.RecordFilter{Carrier: "knight"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, got, 1)
		assert.Equal(t, "4500123877", got[0].ShipmentID)

		_, total, err = store.ListRecords(ctx, run.ID, RecordQuery{
			Filter: compliance.RecordFilter{ISOWeek: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = store.ListRecords(ctx, run.ID, RecordQuery{
			Filter: compliance.RecordFilter{Date: "2020-01-01"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("pagination", func(t *testing.T) {
		got, total, err := store.ListRecords(ctx, run.ID, RecordQuery{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, got, 1)
		assert.Equal(t, "4500123877", got[0].ShipmentID)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := store.GetRun(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRunNotFound)

		_, _, err = store.ListRecords(ctx, uuid.New(), RecordQuery{})
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}
