package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportFixture() []Record {
	return []Record{
		{ShipmentID: "A", Carrier: "SWIFT", Compliance: StatusOnTime, DwellHours: 1.5, ScheduledDate: "2024-03-01", Month: "Mar", ISOWeek: 9},
		{ShipmentID: "B", Carrier: "SWIFT", Compliance: StatusLate, DwellHours: 2.5, ScheduledDate: "2024-03-01", Month: "Mar", ISOWeek: 9},
		{ShipmentID: "C", Carrier: "KNIGHT", Compliance: StatusOnTime, DwellHours: 5.0, ScheduledDate: "2024-03-04", Month: "Mar", ISOWeek: 10},
		{ShipmentID: "D", Carrier: "KNIGHT", Compliance: StatusLate, DwellHours: 0.0, ScheduledDate: "2024-04-02", Month: "Apr", ISOWeek: 14},
	}
}

func TestFilterRecords(t *testing.T) {
	records := reportFixture()

	tests := []struct {
		name   string
		filter RecordFilter
		want   []string
	}{
		{"no filter", RecordFilter{}, []string{"A", "B", "C", "D"}},
		{"by date", RecordFilter{Date: "2024-03-01"}, []string{"A", "B"}},
		{"by iso week", RecordFilter{ISOWeek: 10}, []string{"C"}},
		{"by month case-insensitive", RecordFilter{Month: "mar"}, []string{"A", "B", "C"}},
		{"by carrier", RecordFilter{Carrier: "knight"}, []string{"C", "D"}},
		{"combined", RecordFilter{Month: "Mar", Carrier: "SWIFT"}, []string{"A", "B"}},
		{"no match", RecordFilter{Date: "2020-01-01"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRecords(records, tt.filter)

			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ShipmentID)
			}

			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDwellBucket(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0-2"},
		{1.99, "0-2"},
		{2, "2-3"},
		{2.99, "2-3"},
		{3, "3-4"},
		{4, "4-5"},
		{4.99, "4-5"},
		{5, "5+"},
		{12.5, "5+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DwellBucket(tt.hours), "hours %v", tt.hours)
	}
}

func TestSummarize_ByCompliance(t *testing.T) {
	summaries, err := Summarize(reportFixture(), GroupByCompliance)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, GroupSummary{Group: "Late", Count: 2, LateCount: 2, MeanDwellHours: 1.25}, summaries[0])
	assert.Equal(t, GroupSummary{Group: "On Time", Count: 2, LateCount: 0, MeanDwellHours: 3.25}, summaries[1])
}

func TestSummarize_ByCarrier(t *testing.T) {
	summaries, err := Summarize(reportFixture(), GroupByCarrier)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "KNIGHT", summaries[0].Group)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, 1, summaries[0].LateCount)
	assert.Equal(t, 2.5, summaries[0].MeanDwellHours)

	assert.Equal(t, "SWIFT", summaries[1].Group)
	assert.Equal(t, 2.0, summaries[1].MeanDwellHours)
}

func TestSummarize_ByDwellBucket(t *testing.T) {
	summaries, err := Summarize(reportFixture(), GroupByDwellBucket)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "0-2", summaries[0].Group)
	assert.Equal(t, 2, summaries[0].Count)
	assert.Equal(t, "2-3", summaries[1].Group)
	assert.Equal(t, "5+", summaries[2].Group)
}

func TestSummarize_UnknownDimension(t *testing.T) {
	_, err := Summarize(reportFixture(), GroupBy("visit_type"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownGroupBy)
}

func TestSummarize_EmptyTable(t *testing.T) {
	summaries, err := Summarize(nil, GroupByCarrier)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
