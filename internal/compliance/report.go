package compliance

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// GroupBy selects the grouping dimension for a summary.
type GroupBy string

const (
	GroupByCompliance  GroupBy = "compliance"
	GroupByCarrier     GroupBy = "carrier"
	GroupByDwellBucket GroupBy = "dwell_bucket"
)

// ErrUnknownGroupBy indicates a grouping dimension the reporting layer does
// not support.
var ErrUnknownGroupBy = errors.New("unknown group_by dimension")

// dwellBucketLabels in ascending bucket order. Labels sort lexically in the
// same order, which keeps summaries deterministic without a custom sort.
var dwellBucketLabels = []string{"0-2", "2-3", "3-4", "4-5", "5+"}

// DwellBucket assigns a dwell duration to its reporting bucket.
// Buckets are half-open: [0,2) [2,3) [3,4) [4,5) [5,∞).
func DwellBucket(hours float64) string {
	switch {
	case hours < 2:
		return dwellBucketLabels[0]
	case hours < 3:
		return dwellBucketLabels[1]
	case hours < 4:
		return dwellBucketLabels[2]
	case hours < 5:
		return dwellBucketLabels[3]
	default:
		return dwellBucketLabels[4]
	}
}

// RecordFilter narrows a compliance table for reporting. Zero-valued fields
// do not filter.
type RecordFilter struct {
	// Date matches ScheduledDate exactly (YYYY-MM-DD).
	Date string

	// ISOWeek matches the ISO-8601 week number; 0 means no filter.
	ISOWeek int

	// Month matches the abbreviated month name, case-insensitively.
	Month string

	// Carrier matches the carrier name, case-insensitively.
	Carrier string
}

// FilterRecords returns the records matching every set field of f,
// preserving input order.
func FilterRecords(records []Record, f RecordFilter) []Record {
	matched := make([]Record, 0, len(records))

	for i := range records {
		if f.Date != "" && records[i].ScheduledDate != f.Date {
			continue
		}

		if f.ISOWeek != 0 && records[i].ISOWeek != f.ISOWeek {
			continue
		}

		if f.Month != "" && !strings.EqualFold(records[i].Month, f.Month) {
			continue
		}

		if f.Carrier != "" && !strings.EqualFold(records[i].Carrier, f.Carrier) {
			continue
		}

		matched = append(matched, records[i])
	}

	return matched
}

// GroupSummary is one row of an aggregated report: record count, late count,
// and mean dwell for the group.
type GroupSummary struct {
	Group          string  `json:"group"`
	Count          int     `json:"count"`
	LateCount      int     `json:"lateCount"`
	MeanDwellHours float64 `json:"meanDwellHours"`
}

// Summarize aggregates a compliance table along the requested dimension.
// Groups are returned in ascending group-name order; the mean dwell is
// rounded to 2 decimals like the per-record values.
func Summarize(records []Record, groupBy GroupBy) ([]GroupSummary, error) {
	key, err := groupKey(groupBy)
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		count int
		late  int
		dwell float64
	}

	groups := make(map[string]*accumulator)

	for i := range records {
		name := key(&records[i])

		acc, ok := groups[name]
		if !ok {
			acc = &accumulator{}
			groups[name] = acc
		}

		acc.count++
		acc.dwell += records[i].DwellHours

		if records[i].Compliance == StatusLate {
			acc.late++
		}
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for name, acc := range groups {
		summaries = append(summaries, GroupSummary{
			Group:          name,
			Count:          acc.count,
			LateCount:      acc.late,
			MeanDwellHours: math.Round(acc.dwell/float64(acc.count)*100) / 100,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Group < summaries[j].Group
	})

	return summaries, nil
}

func groupKey(groupBy GroupBy) (func(*Record) string, error) {
	switch groupBy {
	case GroupByCompliance:
		return func(r *Record) string { return string(r.Compliance) }, nil
	case GroupByCarrier:
		return func(r *Record) string { return r.Carrier }, nil
	case GroupByDwellBucket:
		return func(r *Record) string { return DwellBucket(r.DwellHours) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroupBy, groupBy)
	}
}
