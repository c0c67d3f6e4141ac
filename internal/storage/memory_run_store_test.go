package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcferry08/dwelltime/internal/compliance"
)

func sampleRun(records int) (*Run, []compliance.Record) {
	run := &Run{
		ID:          uuid.New(),
		CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EvaluatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Stats:       compliance.Stats{ComplianceRecords: records},
	}

	table := make([]compliance.Record, 0, records)
	carriers := []string{"SWIFT", "KNIGHT"}

	for i := 0; i < records; i++ {
		table = append(table, compliance.Record{
			ShipmentID:    uuid.NewString(),
			Carrier:       carriers[i%len(carriers)],
			Compliance:    compliance.StatusOnTime,
			DwellHours:    float64(i),
			ScheduledDate: "2024-03-01",
			Month:         "Mar",
			ISOWeek:       9,
		})
	}

	return run, table
}

func TestInMemoryRunStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRunStore()
	run, records := sampleRun(3)

	require.NoError(t, store.SaveRun(ctx, run, records))

	fetched, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, fetched.ID)
	assert.Equal(t, 3, fetched.Stats.ComplianceRecords)

	// Saving the same run twice is rejected.
	assert.Error(t, store.SaveRun(ctx, run, records))
}

func TestInMemoryRunStore_GetUnknownRun(t *testing.T) {
	store := NewInMemoryRunStore()

	_, err := store.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestInMemoryRunStore_ListRecords(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryRunStore()
	run, records := sampleRun(5)
	require.NoError(t, store.SaveRun(ctx, run, records))

	t.Run("all records", func(t *testing.T) {
		got, total, err := store.ListRecords(ctx, run.ID, RecordQuery{})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, got, 5)
	})

	t.Run("filter by carrier", func(t *testing.T) {
		got, total, err := store.ListRecords(ctx, run.ID, RecordQuery{
			Filter: compliance.RecordFilter{Carrier: "KNIGHT"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, got, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		first, total, err := store.ListRecords(ctx, run.ID, RecordQuery{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, first, 2)

		second, _, err := store.ListRecords(ctx, run.ID, RecordQuery{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, second, 2)
		assert.NotEqual(t, first[0].ShipmentID, second[0].ShipmentID)

		last, _, err := store.ListRecords(ctx, run.ID, RecordQuery{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Len(t, last, 1)

		past, _, err := store.ListRecords(ctx, run.ID, RecordQuery{Limit: 2, Offset: 99})
		require.NoError(t, err)
		assert.Empty(t, past)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, _, err := store.ListRecords(ctx, uuid.New(), RecordQuery{})
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}

func TestRecordQueryNormalize(t *testing.T) {
	q := RecordQuery{Limit: -5, Offset: -1}
	q.normalize()
	assert.Equal(t, defaultRecordLimit, q.Limit)
	assert.Equal(t, 0, q.Offset)

	q = RecordQuery{Limit: 99999}
	q.normalize()
	assert.Equal(t, maxRecordLimit, q.Limit)
}
