package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// Summary aggregates a dataset and its dry periods.
type Summary struct {
	HasData       bool      `json:"has_data"`
	FirstRain     time.Time `json:"-"`
	FirstRainDate string    `json:"first_rain_date,omitempty"`
	Today         time.Time `json:"-"`

	// TotalDays spans the first qualifying date through today, inclusive.
	TotalDays  int `json:"total_days"`
	RainDays   int `json:"rain_days"`
	DryDays    int `json:"dry_days"`
	DryPeriods int `json:"dry_periods"`

	LongestDays  int     `json:"longest_days"`
	MeanDays     float64 `json:"mean_days"`
	MedianDays   float64 `json:"median_days"`
	StdDevDays   float64 `json:"stddev_days"`
	ThresholdMM  float64 `json:"threshold_mm"`
	Measurements int     `json:"measurements"`
}

// Summarize computes totals the same way the analysis does: rain days are the
// measurements meeting threshold (duplicates counted), dry days are the summed
// period lengths.
func Summarize(records domain.RecordSet, periods []domain.DryPeriod, threshold float64, today time.Time) Summary {
	s := Summary{
		ThresholdMM:  threshold,
		Measurements: records.Len(),
		Today:        domain.CalendarDay(today),
	}

	dates := domain.QualifyingDates(records, threshold)
	if len(dates) == 0 {
		return s
	}

	s.HasData = true
	s.FirstRain = dates[0]
	s.FirstRainDate = domain.FormatDate(dates[0])
	s.TotalDays = domain.DaysBetween(s.FirstRain, s.Today) + 1
	s.RainDays = len(dates)
	s.DryPeriods = len(periods)

	if len(periods) == 0 {
		return s
	}

	lengths := make([]float64, len(periods))
	for i, p := range periods {
		lengths[i] = float64(p.Days)
		s.DryDays += p.Days
		if p.Days > s.LongestDays {
			s.LongestDays = p.Days
		}
	}
	sort.Float64s(lengths)

	s.MeanDays = stat.Mean(lengths, nil)
	s.MedianDays = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	if len(lengths) > 1 {
		s.StdDevDays = stat.StdDev(lengths, nil)
	}
	return s
}
