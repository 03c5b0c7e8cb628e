// Package report ranks, filters, summarizes and renders dry periods. It never
// changes the periods themselves; gap detection lives in the domain package.
package report

import (
	"sort"
	"time"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// Rank returns a copy of periods sorted longest first. Periods of equal length
// keep their chronological order.
func Rank(periods []domain.DryPeriod) []domain.DryPeriod {
	ranked := make([]domain.DryPeriod, len(periods))
	copy(ranked, periods)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Days > ranked[j].Days
	})
	return ranked
}

// Top returns the first n periods. A non-positive n returns all of them.
func Top(periods []domain.DryPeriod, n int) []domain.DryPeriod {
	if n <= 0 || n >= len(periods) {
		return periods
	}
	return periods[:n]
}

// TrailingWindow returns the closed window of the given number of days
// ending on today.
func TrailingWindow(today time.Time, days int) (from, to time.Time) {
	to = domain.CalendarDay(today)
	return domain.AddDays(to, -days), to
}

// Overlapping keeps the periods that share at least one day with [from, to],
// preserving their order.
func Overlapping(periods []domain.DryPeriod, from, to time.Time) []domain.DryPeriod {
	out := make([]domain.DryPeriod, 0, len(periods))
	for _, p := range periods {
		if p.Overlaps(from, to) {
			out = append(out, p)
		}
	}
	return out
}
