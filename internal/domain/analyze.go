package domain

import (
	"sort"
	"time"
)

// QualifyingDates flattens every group and returns the dates whose rainfall
// meets threshold (inclusive), sorted ascending. Duplicate dates are kept.
func QualifyingDates(records RecordSet, threshold float64) []time.Time {
	dates := make([]time.Time, 0, records.Len())
	for _, ms := range records {
		for _, m := range ms {
			if m.RainfallMM >= threshold {
				dates = append(dates, CalendarDay(m.Date))
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// FindDryPeriods returns every gap of at least one day between consecutive
// qualifying dates, in chronological order. When includeToToday is set and
// today is after the last qualifying date, a trailing period ending on today
// is appended; its length excludes today itself.
//
// The result is never nil. Empty input, a single qualifying date, or a
// threshold nothing meets all yield an empty slice.
func FindDryPeriods(records RecordSet, threshold float64, includeToToday bool, today time.Time) []DryPeriod {
	dates := QualifyingDates(records, threshold)
	periods := make([]DryPeriod, 0)

	for i := 0; i+1 < len(dates); i++ {
		gap := DaysBetween(dates[i], dates[i+1]) - 1
		if gap < 1 {
			continue
		}
		periods = append(periods, DryPeriod{
			Start: AddDays(dates[i], 1),
			End:   AddDays(dates[i+1], -1),
			Days:  gap,
		})
	}

	if !includeToToday || len(dates) == 0 {
		return periods
	}

	last := dates[len(dates)-1]
	today = CalendarDay(today)
	if !today.After(last) {
		return periods
	}
	if gap := DaysBetween(last, today) - 1; gap >= 1 {
		periods = append(periods, DryPeriod{
			Start: AddDays(last, 1),
			End:   today,
			Days:  gap,
		})
	}
	return periods
}
