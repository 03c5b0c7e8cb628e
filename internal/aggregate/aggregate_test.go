package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

func measurement(t *testing.T, s string, mm float64) domain.Measurement {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return domain.Measurement{Date: d, RainfallMM: mm}
}

func sampleRecords(t *testing.T) domain.RecordSet {
	return domain.RecordSet{
		"2022": {},
		"2023": {
			measurement(t, "2023-01-15", 10),
			measurement(t, "2023-04-02", 4),
			measurement(t, "2023-08-20", 6),
		},
		"2024": {
			measurement(t, "2024-01-03", 2),
			measurement(t, "2024-01-20", 3),
			measurement(t, "2024-02-29", 1),
		},
	}
}

func totalsByPeriod(totals []PeriodTotal) map[string]float64 {
	out := make(map[string]float64, len(totals))
	for _, pt := range totals {
		out[pt.Period] = pt.TotalMM
	}
	return out
}

func TestParseGranularity(t *testing.T) {
	for _, s := range []string{"year", "half", "quarter", "month"} {
		g, err := ParseGranularity(s)
		require.NoError(t, err)
		assert.Equal(t, Granularity(s), g)
	}

	_, err := ParseGranularity("week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "week")
}

func TestTotals(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("yearly includes empty years", func(t *testing.T) {
		got := Totals(sampleRecords(t), Year, today)
		require.Len(t, got, 3)
		assert.Equal(t, PeriodTotal{Period: "2022", TotalMM: 0}, got[0])
		assert.Equal(t, PeriodTotal{Period: "2024", TotalMM: 6}, got[1])
		assert.Equal(t, PeriodTotal{Period: "2023", TotalMM: 20}, got[2])
	})

	t.Run("monthly stops at the current month", func(t *testing.T) {
		got := totalsByPeriod(Totals(sampleRecords(t), Month, today))
		assert.Len(t, got, 12+12+3)
		assert.Equal(t, 5.0, got["2024-01"])
		assert.Equal(t, 1.0, got["2024-02"])
		assert.Contains(t, got, "2024-03")
		assert.NotContains(t, got, "2024-04")
		assert.Equal(t, 0.0, got["2022-07"])
	})

	t.Run("quarterly", func(t *testing.T) {
		got := totalsByPeriod(Totals(sampleRecords(t), Quarter, today))
		assert.Equal(t, 10.0, got["2023-Q1"])
		assert.Equal(t, 4.0, got["2023-Q2"])
		assert.Equal(t, 6.0, got["2023-Q3"])
		assert.Equal(t, 0.0, got["2023-Q4"])
		assert.Equal(t, 6.0, got["2024-Q1"])
		assert.NotContains(t, got, "2024-Q2")
	})

	t.Run("half-yearly", func(t *testing.T) {
		got := totalsByPeriod(Totals(sampleRecords(t), Half, today))
		assert.Equal(t, 14.0, got["2023-H1"])
		assert.Equal(t, 6.0, got["2023-H2"])
		assert.Equal(t, 6.0, got["2024-H1"])
	})

	t.Run("sorted driest first", func(t *testing.T) {
		got := Totals(sampleRecords(t), Month, today)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].TotalMM, got[i].TotalMM)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		assert.Empty(t, Totals(domain.RecordSet{}, Year, today))
	})
}

func TestAverages(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("monthly", func(t *testing.T) {
		got := Averages(sampleRecords(t), Month, today)
		require.Len(t, got, 4)

		assert.Equal(t, "01", got[0].Period)
		assert.InDelta(t, 7.5, got[0].AverageMM, 1e-9)
		assert.InDelta(t, 5.0, got[0].RecentMM, 1e-9)
		assert.Equal(t, 2, got[0].YearsCount)

		assert.Equal(t, "02", got[1].Period)
		assert.InDelta(t, 1.0, got[1].AverageMM, 1e-9)

		assert.Equal(t, "08", got[3].Period)
		assert.InDelta(t, 6.0, got[3].RecentMM, 1e-9)
	})

	t.Run("quarterly recent window excludes older records", func(t *testing.T) {
		got := Averages(sampleRecords(t), Quarter, today)
		require.Len(t, got, 3)
		assert.Equal(t, "Q1", got[0].Period)
		assert.InDelta(t, 8.0, got[0].AverageMM, 1e-9)
		assert.InDelta(t, 6.0, got[0].RecentMM, 1e-9)
		assert.Equal(t, "Q2", got[1].Period)
		assert.InDelta(t, 4.0, got[1].RecentMM, 1e-9)
	})

	t.Run("current bucket counts this year only", func(t *testing.T) {
		records := domain.RecordSet{
			"2025": {
				measurement(t, "2025-10-25", 50),
				measurement(t, "2025-11-02", 7),
			},
			"2026": {
				measurement(t, "2026-10-05", 3),
			},
		}
		today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

		tests := []struct {
			name       string
			g          Granularity
			period     string
			wantAvg    float64
			wantRecent float64
		}{
			{"month", Month, "10", 26.5, 3},
			{"other month uses last twelve months", Month, "11", 7, 7},
			{"quarter", Quarter, "Q4", 30, 3},
			{"half", Half, "H2", 30, 3},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				byPeriod := make(map[string]Comparison)
				for _, c := range Averages(records, tt.g, today) {
					byPeriod[c.Period] = c
				}
				require.Contains(t, byPeriod, tt.period)
				assert.InDelta(t, tt.wantAvg, byPeriod[tt.period].AverageMM, 1e-9)
				assert.InDelta(t, tt.wantRecent, byPeriod[tt.period].RecentMM, 1e-9)
			})
		}
	})
}

func TestProgress(t *testing.T) {
	t.Run("running totals to today", func(t *testing.T) {
		today := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
		got := Progress(sampleRecords(t), today)
		require.Len(t, got, 2)

		assert.Equal(t, 2023, got[0].Year)
		require.Len(t, got[0].Totals, 20)
		assert.Equal(t, PeriodTotal{Period: "01-14", TotalMM: 0}, got[0].Totals[13])
		assert.Equal(t, PeriodTotal{Period: "01-15", TotalMM: 10}, got[0].Totals[14])

		assert.Equal(t, 2024, got[1].Year)
		assert.Equal(t, PeriodTotal{Period: "01-20", TotalMM: 5}, got[1].Totals[19])
	})

	t.Run("duplicate dates are summed", func(t *testing.T) {
		records := domain.RecordSet{"2024": {
			measurement(t, "2024-01-02", 1.5),
			measurement(t, "2024-01-02", 2.5),
		}}
		got := Progress(records, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
		require.Len(t, got, 1)
		require.Len(t, got[0].Totals, 3)
		assert.Equal(t, PeriodTotal{Period: "01-02", TotalMM: 4}, got[0].Totals[1])
		assert.Equal(t, PeriodTotal{Period: "01-03", TotalMM: 4}, got[0].Totals[2])
	})

	t.Run("leap day clamps in non-leap years", func(t *testing.T) {
		today := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		got := Progress(sampleRecords(t), today)
		require.Len(t, got, 2)
		assert.Len(t, got[0].Totals, 59)
		assert.Equal(t, "02-28", got[0].Totals[58].Period)
		assert.Len(t, got[1].Totals, 60)
		assert.Equal(t, 6.0, got[1].Totals[59].TotalMM)
	})
}
