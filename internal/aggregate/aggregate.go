// Package aggregate computes rainfall totals by calendar bucket: per year,
// half-year, quarter or month, long-run averages for each bucket of the year,
// and year-to-date running totals.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// Granularity selects the calendar bucket used for totals and averages.
type Granularity string

const (
	Year    Granularity = "year"
	Half    Granularity = "half"
	Quarter Granularity = "quarter"
	Month   Granularity = "month"
)

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Year, Half, Quarter, Month:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want year, half, quarter or month)", s)
	}
}

// PeriodTotal is the rainfall summed over one labelled period.
type PeriodTotal struct {
	Period  string  `json:"period"`
	TotalMM float64 `json:"total_mm"`
}

// Comparison sets a bucket's long-run average against its most recent total.
type Comparison struct {
	Period     string  `json:"period"`
	AverageMM  float64 `json:"average_mm"`
	RecentMM   float64 `json:"recent_mm"`
	YearsCount int     `json:"years"`
}

// label returns the bucket for t including the year, e.g. "2024-Q2".
func label(g Granularity, t time.Time) string {
	switch g {
	case Half:
		return fmt.Sprintf("%d-%s", t.Year(), halfOf(t.Month()))
	case Quarter:
		return fmt.Sprintf("%d-%s", t.Year(), quarterOf(t.Month()))
	case Month:
		return t.Format("2006-01")
	default:
		return strconv.Itoa(t.Year())
	}
}

// bucketOfYear returns the bucket for t without the year, e.g. "Q2" or "06".
func bucketOfYear(g Granularity, t time.Time) string {
	switch g {
	case Half:
		return halfOf(t.Month())
	case Quarter:
		return quarterOf(t.Month())
	case Month:
		return t.Format("01")
	default:
		return strconv.Itoa(t.Year())
	}
}

func halfOf(m time.Month) string {
	if m <= time.June {
		return "H1"
	}
	return "H2"
}

func quarterOf(m time.Month) string {
	return fmt.Sprintf("Q%d", (int(m)-1)/3+1)
}

// Totals sums rainfall per period. Every year named by a group key gets a
// zero entry for each of its periods up to today, so dry years still appear.
// The result is sorted driest first, ties broken by period label.
func Totals(records domain.RecordSet, g Granularity, today time.Time) []PeriodTotal {
	today = domain.CalendarDay(today)
	totals := make(map[string]float64)

	for _, key := range records.Keys() {
		year, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		for _, start := range periodStarts(g, year) {
			if start.After(today) {
				break
			}
			totals[label(g, start)] = 0
		}
	}

	for _, m := range records.Flatten() {
		totals[label(g, m.Date)] += m.RainfallMM
	}

	out := make([]PeriodTotal, 0, len(totals))
	for period, total := range totals {
		out = append(out, PeriodTotal{Period: period, TotalMM: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMM != out[j].TotalMM {
			return out[i].TotalMM < out[j].TotalMM
		}
		return out[i].Period < out[j].Period
	})
	return out
}

// periodStarts lists the first day of each period in year.
func periodStarts(g Granularity, year int) []time.Time {
	step := map[Granularity]int{Year: 12, Half: 6, Quarter: 3, Month: 1}[g]
	if step == 0 {
		step = 12
	}
	var starts []time.Time
	for m := 1; m <= 12; m += step {
		starts = append(starts, time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
	}
	return starts
}

// Averages returns, for each bucket of the year, the average total across the
// distinct years that have measurements in it, alongside its most recent
// total. The bucket containing today counts this year's measurements only;
// every other bucket counts the twelve months ending today. Sorted by bucket.
func Averages(records domain.RecordSet, g Granularity, today time.Time) []Comparison {
	today = domain.CalendarDay(today)
	recentFrom := today.AddDate(-1, 0, 0)
	current := bucketOfYear(g, today)

	totals := make(map[string]float64)
	recent := make(map[string]float64)
	years := make(map[string]map[int]struct{})

	for _, m := range records.Flatten() {
		bucket := bucketOfYear(g, m.Date)
		totals[bucket] += m.RainfallMM
		if years[bucket] == nil {
			years[bucket] = make(map[int]struct{})
		}
		years[bucket][m.Date.Year()] = struct{}{}
		if isRecent(m.Date, bucket == current, recentFrom, today) {
			recent[bucket] += m.RainfallMM
		}
	}

	out := make([]Comparison, 0, len(totals))
	for bucket, total := range totals {
		n := len(years[bucket])
		out = append(out, Comparison{
			Period:     bucket,
			AverageMM:  total / float64(n),
			RecentMM:   recent[bucket],
			YearsCount: n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period < out[j].Period
	})
	return out
}

func isRecent(d time.Time, inCurrentBucket bool, from, today time.Time) bool {
	if d.After(today) {
		return false
	}
	if inCurrentBucket {
		return d.Year() == today.Year()
	}
	return d.After(from)
}

// YearProgress holds the daily running total for one year.
type YearProgress struct {
	Year   int           `json:"year"`
	Totals []PeriodTotal `json:"totals"`
}

// Progress returns, for every year with measurements, the running total from
// January 1 through the month and day of today. On February 29 non-leap years
// stop at February 28.
func Progress(records domain.RecordSet, today time.Time) []YearProgress {
	today = domain.CalendarDay(today)

	byYear := make(map[int]map[string]float64)
	for _, m := range records.Flatten() {
		y := m.Date.Year()
		if byYear[y] == nil {
			byYear[y] = make(map[string]float64)
		}
		byYear[y][domain.FormatDate(m.Date)] += m.RainfallMM
	}

	out := make([]YearProgress, 0, len(byYear))
	for year, daily := range byYear {
		end := time.Date(year, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		if today.Month() == time.February && today.Day() == 29 && !isLeapYear(year) {
			end = time.Date(year, time.February, 28, 0, 0, 0, 0, time.UTC)
		}

		var running float64
		var totals []PeriodTotal
		for d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); !d.After(end); d = d.AddDate(0, 0, 1) {
			running += daily[domain.FormatDate(d)]
			totals = append(totals, PeriodTotal{Period: d.Format("01-02"), TotalMM: running})
		}
		out = append(out, YearProgress{Year: year, Totals: totals})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
