package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the on-disk date format for measurements and dry periods.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// Measurement is one dated rainfall observation.
type Measurement struct {
	Date       time.Time `json:"date"`
	RainfallMM float64   `json:"rainfall_mm"`
}

// RecordSet maps a grouping key (the year, as loaded) to its measurements.
// The key is opaque to analysis; a group may be empty.
type RecordSet map[string][]Measurement

// Len returns the number of measurements across all groups.
func (rs RecordSet) Len() int {
	n := 0
	for _, ms := range rs {
		n += len(ms)
	}
	return n
}

// Keys returns the grouping keys in ascending order.
func (rs RecordSet) Keys() []string {
	keys := make([]string, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flatten returns every measurement sorted by date. Measurements on the same
// date keep their group order.
func (rs RecordSet) Flatten() []Measurement {
	out := make([]Measurement, 0, rs.Len())
	for _, k := range rs.Keys() {
		out = append(out, rs[k]...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// GroupByYear builds a RecordSet keyed by each measurement's four-digit year.
func GroupByYear(ms []Measurement) RecordSet {
	rs := make(RecordSet)
	for _, m := range ms {
		key := fmt.Sprintf("%04d", m.Date.Year())
		rs[key] = append(rs[key], m)
	}
	return rs
}

// CalendarDay strips the time of day, keeping the wall-clock date of t.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays moves a calendar day forward (or back, for negative n).
func AddDays(t time.Time, n int) time.Time {
	return CalendarDay(t).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CalendarDay(b).Sub(CalendarDay(a)) / day)
}
